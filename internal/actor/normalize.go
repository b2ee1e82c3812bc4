package actor

import (
	"fmt"
	"reflect"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/lib/reflectx"
)

// Normalize 把返回引用的方法结果转换为 ActorRef 形式。
// 单个句柄 -> *ActorRef；序列 -> []*ActorRef；字符串键映射 -> map[string]*ActorRef，
// 其他键 -> map[any]*ActorRef。nil 保持 nil
func Normalize(v any) (any, error) {
	if reflectx.IsNil(v) {
		if v == nil {
			return nil, nil
		}
		if _, ok := v.(IReferable); ok {
			return (*ActorRef)(nil), nil
		}
	}
	if r, ok := v.(IReferable); ok {
		return r.Ref(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []*ActorRef(nil), nil
		}
		out := make([]*ActorRef, rv.Len())
		for i := range out {
			ref, err := normalizeOne(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = ref
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(map[string]*ActorRef, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				ref, err := normalizeOne(iter.Value().Interface())
				if err != nil {
					return nil, err
				}
				out[iter.Key().String()] = ref
			}
			return out, nil
		}
		out := make(map[any]*ActorRef, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ref, err := normalizeOne(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().Interface()] = ref
		}
		return out, nil
	}
	return nil, errs.ErrNotReferenceType(fmt.Sprintf("%T", v))
}

func normalizeOne(v any) (*ActorRef, error) {
	if reflectx.IsNil(v) {
		return nil, nil
	}
	if r, ok := v.(IReferable); ok {
		return r.Ref(), nil
	}
	return nil, errs.ErrNotReferenceType(fmt.Sprintf("%T", v))
}
