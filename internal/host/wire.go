package host

import (
	"github.com/pkg/errors"

	"github.com/dzm2020/gactor/internal/actor"
	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/lib/reflectx"
	"github.com/dzm2020/gactor/pkg/serializer"
)

// envelope 主机之间传输的消息。ReplyKey 是发起方主机内部的路由键，
// CorrelationID 原样透传给调用方
type envelope struct {
	Type          actor.MessageType `msgpack:"t" json:"t"`
	To            string            `msgpack:"to,omitempty" json:"to,omitempty"`
	Method        string            `msgpack:"m,omitempty" json:"m,omitempty"`
	Params        []any             `msgpack:"p,omitempty" json:"p,omitempty"`
	Value         any               `msgpack:"v,omitempty" json:"v,omitempty"`
	Error         string            `msgpack:"e,omitempty" json:"e,omitempty"`
	ReplyTo       string            `msgpack:"rt,omitempty" json:"rt,omitempty"`
	ReplyKey      string            `msgpack:"rk,omitempty" json:"rk,omitempty"`
	CorrelationID string            `msgpack:"cid,omitempty" json:"cid,omitempty"`
}

// envelopeCodec 按名字取信封编码，空名字为 msgpack。
// proto 只能编码生成的 proto.Message，不能承载信封
func envelopeCodec(name string) (serializer.ISerializer, error) {
	if name == "" {
		return serializer.MsgPack, nil
	}
	c, err := serializer.Get(name)
	if err != nil {
		return nil, err
	}
	if c == serializer.PB {
		return nil, errors.Errorf("host: codec %q cannot carry envelopes", name)
	}
	return c, nil
}

func (h *Host) marshalEnvelope(env *envelope) ([]byte, error) {
	data, err := h.codec.Marshal(env)
	if err != nil {
		return nil, errs.ErrMarshalMessageFailed(err)
	}
	return data, nil
}

func (h *Host) unmarshalEnvelope(data []byte) (*envelope, error) {
	env := &envelope{}
	if err := h.codec.Unmarshal(data, env); err != nil {
		return nil, errs.ErrUnmarshalMessageFailed(err)
	}
	if !env.Type.IsRequest() && !env.Type.IsResponse() && env.Type != actor.MsgStop {
		return nil, errs.ErrUnsupportedMessageType(env.Type.String())
	}
	return env, nil
}

// requestEnvelope 请求转为线上格式，句柄统一转成 *ActorRef
func requestEnvelope(to string, msg *actor.Message) *envelope {
	params := make([]any, len(msg.Params))
	for i, p := range msg.Params {
		params[i] = toWire(p)
	}
	return &envelope{
		Type:          msg.Type,
		To:            to,
		Method:        msg.Method,
		Params:        params,
		CorrelationID: msg.CorrelationID,
	}
}

func responseEnvelope(key string, msg *actor.Message) *envelope {
	env := &envelope{
		Type:          msg.Type,
		Value:         toWire(msg.Result.Value),
		ReplyKey:      key,
		CorrelationID: msg.CorrelationID,
	}
	if msg.Result.Err != nil {
		env.Error = msg.Result.Err.Error()
	}
	return env
}

func toWire(v any) any {
	switch x := v.(type) {
	case *actor.ActorRef:
		return x
	case actor.IReferable:
		if reflectx.IsNil(x) {
			return nil
		}
		return x.Ref()
	}
	return v
}
