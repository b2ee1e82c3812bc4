package host

import (
	"go.uber.org/zap"

	"github.com/dzm2020/gactor/internal/actor"
	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/glog"
)

// remoteChannel 代理引用的投递端：把请求编码后发布到目标主机
type remoteChannel struct {
	h    *Host
	host string
	to   string
}

func (h *Host) proxy(hostURL, to string) actor.IChannel {
	return &remoteChannel{h: h, host: hostURL, to: to}
}

func (c *remoteChannel) Send(msg *actor.Message) {
	if msg == nil {
		return
	}
	if err := c.h.forward(c.host, c.to, msg); err != nil {
		glog.Error("host forward failed", zap.String("to", c.to), zap.Stringer("msg", msg), zap.Error(err))
		// 发不出去的请求直接以错误应答，调用方不必等到超时
		if msg.Type.IsRequest() && msg.ResponseChannel != nil {
			if resp := actor.NewResponse(msg, actor.Result{Err: err}); resp != nil {
				msg.ResponseChannel.Send(resp)
			}
		}
	}
}

func (h *Host) forward(hostURL, to string, msg *actor.Message) error {
	if err := h.ready(); err != nil {
		return err
	}
	env := requestEnvelope(to, msg)
	var key string
	if (msg.Type == actor.MsgAsk || msg.Type == actor.MsgFuture) && msg.ResponseChannel != nil {
		key = h.pending.add(msg.Method, msg.ResponseChannel)
		env.ReplyTo, env.ReplyKey = h.url, key
	}
	data, err := h.marshalEnvelope(env)
	if err == nil {
		if err = h.mq.Publish(hostURL, data); err != nil {
			err = errs.ErrPublishFailed(hostURL, err)
		}
	}
	if err != nil && key != "" {
		h.pending.remove(key)
	}
	return err
}

// replyChannel 入站请求的应答端：把应答发回发起方主机
type replyChannel struct {
	h    *Host
	host string
	key  string
}

func (c *replyChannel) Send(msg *actor.Message) {
	if msg == nil {
		return
	}
	data, err := c.h.marshalEnvelope(responseEnvelope(c.key, msg))
	if err != nil {
		glog.Error("host encode response failed", zap.String("to", c.host), zap.Error(err))
		data, err = c.h.marshalEnvelope(&envelope{
			Type:          msg.Type,
			Error:         err.Error(),
			ReplyKey:      c.key,
			CorrelationID: msg.CorrelationID,
		})
		if err != nil {
			return
		}
	}
	if err = c.h.mq.Publish(c.host, data); err != nil {
		glog.Error("host publish response failed", zap.String("to", c.host), zap.Error(err))
	}
}

// OnMessage 入站消息：应答按路由键交给等待方，请求投递到目标 actor 的邮箱
func (h *Host) OnMessage(subject string, data []byte) {
	env, err := h.unmarshalEnvelope(data)
	if err != nil {
		glog.Error("host decode message failed", zap.String("subject", subject), zap.Error(err))
		return
	}
	if env.Type.IsResponse() {
		h.onResponse(env)
		return
	}
	h.onRequest(env)
}

func (h *Host) onResponse(env *envelope) {
	call, ok := h.pending.take(env.ReplyKey)
	if !ok {
		glog.Warn("host response dropped, no pending call", zap.String("key", env.ReplyKey),
			zap.String("cid", env.CorrelationID))
		return
	}
	call.reply.Send(&actor.Message{
		Type:          env.Type,
		Result:        actor.Result{Value: h.rebind(env.Value), Err: errs.NewRemoteError(env.Error)},
		CorrelationID: env.CorrelationID,
	})
}

func (h *Host) onRequest(env *envelope) {
	var reply actor.IChannel
	if env.ReplyTo != "" {
		reply = &replyChannel{h: h, host: env.ReplyTo, key: env.ReplyKey}
	}
	for i, p := range env.Params {
		env.Params[i] = h.rebind(p)
	}
	msg := &actor.Message{
		Type:            env.Type,
		Method:          env.Method,
		Params:          env.Params,
		ResponseChannel: reply,
		CorrelationID:   env.CorrelationID,
	}
	target := h.resolve(env.To)
	if target == nil {
		glog.Warn("host request for unknown actor", zap.String("to", env.To), zap.Stringer("msg", msg))
		if reply != nil {
			if resp := actor.NewResponse(msg, actor.Result{Err: errs.ErrActorNotFoundURL(env.To)}); resp != nil {
				reply.Send(resp)
			}
		}
		return
	}
	if err := target.Send(msg); err != nil {
		glog.Warn("host request dropped", zap.String("to", env.To), zap.Stringer("msg", msg), zap.Error(err))
	}
}

// rebind 为解码出的引用绑定通道：本主机的 actor 直连邮箱，其他主机走代理。
// json/pbstruct 编码下引用解码为带 actor.RefJSONKey 的 map，先还原为 *actor.ActorRef
func (h *Host) rebind(v any) any {
	switch x := v.(type) {
	case *actor.ActorRef:
		if x != nil {
			h.bindRef(x)
		}
	case []any:
		for i := range x {
			x[i] = h.rebind(x[i])
		}
	case map[string]any:
		if ref, ok := actor.RefFromMap(x); ok {
			h.bindRef(ref)
			return ref
		}
		for k, e := range x {
			x[k] = h.rebind(e)
		}
	case map[any]any:
		for k, e := range x {
			x[k] = h.rebind(e)
		}
	}
	return v
}

func (h *Host) bindRef(ref *actor.ActorRef) {
	if ref.IsBound() {
		return
	}
	hostURL, _, err := SplitURL(ref.URL())
	if err != nil {
		glog.Warn("host cannot bind reference", zap.Stringer("ref", ref), zap.Error(err))
		return
	}
	if hostURL == h.url {
		if a := h.resolve(ref.URL()); a != nil {
			ref.Bind(a.Mailbox())
			return
		}
	}
	ref.Bind(h.proxy(hostURL, ref.URL()))
}
