package actor

import (
	"fmt"
	"reflect"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/lib/reflectx"
	"golang.org/x/exp/slices"
)

var typeOfError = reflect.TypeOf((*error)(nil)).Elem()

// invoker 基于反射的方法表，只在 actor 自己的协程里使用
type invoker struct {
	methods map[string]reflect.Value
	refs    []string
}

func newInvoker(obj any, refs []string) *invoker {
	return &invoker{
		methods: reflectx.BoundMethods(obj),
		refs:    refs,
	}
}

func (iv *invoker) has(method string) bool {
	_, ok := iv.methods[method]
	return ok
}

// invoke 执行方法并把所有失败收敛为 Result.Err，不会 panic
func (iv *invoker) invoke(method string, params []any) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Err: errs.ErrPanic(method, r)}
		}
	}()
	fn, ok := iv.methods[method]
	if !ok {
		return Result{Err: errs.ErrMethodNotFoundName(method)}
	}
	args, err := buildArgs(method, fn.Type(), params)
	if err != nil {
		return Result{Err: err}
	}
	result = collect(fn.Call(args))
	if !result.Failed() && slices.Contains(iv.refs, method) {
		value, err := Normalize(result.Value)
		if err != nil {
			return Result{Err: err}
		}
		result.Value = value
	}
	return result
}

func buildArgs(method string, ft reflect.Type, params []any) ([]reflect.Value, error) {
	numIn := ft.NumIn()
	if ft.IsVariadic() {
		if len(params) < numIn-1 {
			return nil, errs.ErrParamCount(method, numIn-1, len(params))
		}
	} else if len(params) != numIn {
		return nil, errs.ErrParamCount(method, numIn, len(params))
	}
	args := make([]reflect.Value, len(params))
	for i, p := range params {
		var want reflect.Type
		if ft.IsVariadic() && i >= numIn-1 {
			want = ft.In(numIn - 1).Elem()
		} else {
			want = ft.In(i)
		}
		v, err := convertValue(p, want)
		if err != nil {
			return nil, errs.ErrParamType(method, i, want.String(), fmt.Sprintf("%T", p))
		}
		args[i] = v
	}
	return args, nil
}

// convertValue 把解码后的通用值转换为参数类型：
// 可赋值直接用，数值之间按 Convert 转换，[]any 和 map 逐元素转换
func convertValue(p any, want reflect.Type) (reflect.Value, error) {
	if p == nil {
		switch want.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, errs.ErrBadParams
	}
	v := reflect.ValueOf(p)
	t := v.Type()
	if t.AssignableTo(want) {
		return v, nil
	}
	switch {
	case want.Kind() == reflect.String && isInteger(t.Kind()):
		// int -> string 在 Go 中是取码点，不当作合法转换
		return reflect.Value{}, errs.ErrBadParams
	case t.ConvertibleTo(want) && !(t.Kind() == reflect.Slice && want.Kind() == reflect.Slice):
		return v.Convert(want), nil
	case want.Kind() == reflect.Slice && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array):
		out := reflect.MakeSlice(want, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			ev, err := convertValue(v.Index(i).Interface(), want.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case want.Kind() == reflect.Map && t.Kind() == reflect.Map:
		out := reflect.MakeMapWithSize(want, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			kv, err := convertValue(iter.Key().Interface(), want.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			ev, err := convertValue(iter.Value().Interface(), want.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(kv, ev)
		}
		return out, nil
	}
	return reflect.Value{}, errs.ErrBadParams
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// collect 把返回值整理为 Result：末位 error 单独取出，其余 0 个为 nil、1 个原样、多个为 []any
func collect(out []reflect.Value) Result {
	var err error
	if n := len(out); n > 0 && out[n-1].Type() == typeOfError {
		if e := out[n-1].Interface(); e != nil {
			err = e.(error)
		}
		out = out[:n-1]
	}
	if err != nil {
		return Result{Err: err}
	}
	switch len(out) {
	case 0:
		return Result{}
	case 1:
		return Result{Value: out[0].Interface()}
	}
	values := make([]any, len(out))
	for i, o := range out {
		values[i] = o.Interface()
	}
	return Result{Value: values}
}
