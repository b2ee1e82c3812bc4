// Package actor 位置透明的 Actor 运行时：邮箱、消息协议、引用身份与调用协议
package actor

import (
	"strings"
	"sync/atomic"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/glog"
	"github.com/dzm2020/gactor/pkg/lib/reflectx"
	"go.uber.org/zap"
)

// State 生命周期状态
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Actor 持有一个用户对象、一个邮箱和一个处理协程。
// Actor 本身就是它的引用，引用上的调用协议可以直接使用
type Actor struct {
	*ActorRef
	obj     any
	mailbox *Mailbox
	invoke  InvokeFunc
	state   atomic.Int32
	done    chan struct{}
}

// Spawn 绑定对象并启动处理协程，返回时已处于 Running
func Spawn(url string, class IClass, obj any, options ...Option) (*Actor, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errs.ErrInvalidURLReason(url, "empty")
	}
	if reflectx.IsNil(obj) {
		return nil, errs.ErrObjectIsNil
	}
	if reflectx.IsNil(class) {
		return nil, errs.ErrClassIsNil
	}
	opts := loadOptions(options...)
	a := &Actor{
		obj:     obj,
		mailbox: opts.Mailbox,
		done:    make(chan struct{}),
	}
	a.ActorRef = NewRef(url, class, a.mailbox)
	iv := newInvoker(obj, class.RefMethods())
	for _, m := range append(a.TellMethods(), a.AskMethods()...) {
		if m != StopMethod && !iv.has(m) {
			glog.Warn("actor declared method missing", zap.String("url", url), zap.String("method", m))
		}
	}
	a.invoke = chain(opts.Middlewares, iv.invoke)
	a.state.Store(int32(StateRunning))
	opts.Group.Go(a.loop)
	glog.Debug("actor spawned", zap.String("url", url), zap.String("class", a.ClassName()), zap.String("type", reflectx.TypeFullName(obj)))
	return a, nil
}

// Ref actor 自身持有的引用
func (a *Actor) Ref() *ActorRef {
	if a == nil {
		return nil
	}
	return a.ActorRef
}

// Object 绑定的用户对象，只能在测试或 actor 停止后访问
func (a *Actor) Object() any {
	return a.obj
}

func (a *Actor) Mailbox() *Mailbox {
	return a.mailbox
}

func (a *Actor) State() State {
	return State(a.state.Load())
}

func (a *Actor) IsAlive() bool {
	return a.State() == StateRunning
}

// Done 处理协程退出后关闭
func (a *Actor) Done() <-chan struct{} {
	return a.done
}

func (a *Actor) String() string {
	return a.ActorRef.String()
}

func (a *Actor) loop() {
	defer func() {
		a.state.Store(int32(StateStopped))
		close(a.done)
		glog.Debug("actor stopped", zap.String("url", a.URL()))
	}()
	for {
		msg, err := a.mailbox.Receive(0)
		if err != nil {
			continue
		}
		if !a.dispatch(msg) {
			return
		}
	}
}

// dispatch 处理一条消息，返回 false 表示退出循环
func (a *Actor) dispatch(msg *Message) bool {
	if msg.Type == MsgStop || msg.Method == StopMethod && msg.Type.IsRequest() {
		return false
	}
	switch msg.Type {
	case MsgTell:
		a.invoke(msg.Method, msg.Params)
	case MsgAsk, MsgFuture:
		result := a.invoke(msg.Method, msg.Params)
		a.respond(msg, result)
	default:
		glog.Warn("actor unexpected message", zap.String("url", a.URL()), zap.Stringer("msg", msg))
	}
	return true
}

func (a *Actor) respond(req *Message, result Result) {
	if req.ResponseChannel == nil {
		glog.Warn("actor response dropped, no channel", zap.String("url", a.URL()), zap.Stringer("msg", req))
		return
	}
	req.ResponseChannel.Send(NewResponse(req, result))
}
