package reflectx

import (
	"reflect"
)

// TypeFullName 包路径加类型名，指针取元素类型
func TypeFullName(v interface{}) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + ":" + t.Name()
}

// TypeName 不带包路径的类型名
func TypeName(v interface{}) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// BoundMethods 返回 rec 上全部导出方法，值已绑定接收者
func BoundMethods(rec interface{}) map[string]reflect.Value {
	v := reflect.ValueOf(rec)
	typ := v.Type()
	methods := make(map[string]reflect.Value, typ.NumMethod())
	for index := 0; index < typ.NumMethod(); index++ {
		fun := typ.Method(index)
		if fun.PkgPath != "" {
			continue
		}
		methods[fun.Name] = v.Method(index)
	}
	return methods
}

// IsNil 判断接口内的值是否为 nil（含类型化 nil 指针）
func IsNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
