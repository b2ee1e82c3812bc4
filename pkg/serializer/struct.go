package serializer

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// structCodec 任意可 JSON 编码的对象转为 google.protobuf.Struct 再按 protobuf 编码。
// 顶层必须编码为 JSON 对象，数值统一为 float64
type structCodec struct {
}

func (s *structCodec) Name() string {
	return "pbstruct"
}

func (s *structCodec) Marshal(msg interface{}) ([]byte, error) {
	bin, err := Json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err = Json.Unmarshal(bin, &fields); err != nil {
		return nil, errors.Wrap(ErrNotObject, err.Error())
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return PB.Marshal(st)
}

func (s *structCodec) Unmarshal(data []byte, msg interface{}) error {
	st := &structpb.Struct{}
	if err := PB.Unmarshal(data, st); err != nil {
		return err
	}
	bin, err := Json.Marshal(st.AsMap())
	if err != nil {
		return err
	}
	return Json.Unmarshal(bin, msg)
}
