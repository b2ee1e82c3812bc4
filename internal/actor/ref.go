package actor

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/duke-git/lancet/v2/slice"
	"golang.org/x/exp/slices"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/lib/reflectx"
)

// IReferable 可以规范化为 ActorRef 的句柄
type IReferable interface {
	Ref() *ActorRef
}

var _ IReferable = (*ActorRef)(nil)

// ActorRef Actor 的位置透明引用。
// 相等性只由 URL 决定：本地创建的引用和远端查找重建的引用只要 URL 相同就相等，
// 但不保证是同一个指针
type ActorRef struct {
	url     string
	class   string
	tell    []string
	ask     []string
	tellRef []string
	askRef  []string
	channel IChannel
}

// NewRef 按能力声明构造引用。返回引用的方法从 tell/ask 中移出，tell 总是包含 stop
func NewRef(url string, class IClass, channel IChannel) *ActorRef {
	r := &ActorRef{url: url, channel: channel}
	if class != nil {
		r.class = class.ClassName()
		r.tell = slice.Unique(slices.Clone(class.TellMethods()))
		r.ask = slice.Unique(slices.Clone(class.AskMethods()))
		if refs := class.RefMethods(); len(refs) > 0 {
			r.tellRef = slice.Intersection(r.tell, refs)
			r.askRef = slice.Intersection(r.ask, refs)
			r.tell = slice.Difference(r.tell, refs)
			r.ask = slice.Difference(r.ask, refs)
		}
	}
	if !slices.Contains(r.tell, StopMethod) {
		r.tell = append(r.tell, StopMethod)
	}
	return r
}

func (r *ActorRef) Ref() *ActorRef { return r }

func (r *ActorRef) URL() string { return r.url }

func (r *ActorRef) ClassName() string { return r.class }

func (r *ActorRef) TellMethods() []string { return slices.Clone(r.tell) }

func (r *ActorRef) AskMethods() []string { return slices.Clone(r.ask) }

func (r *ActorRef) TellRefMethods() []string { return slices.Clone(r.tellRef) }

func (r *ActorRef) AskRefMethods() []string { return slices.Clone(r.askRef) }

// CanTell 方法是否可 tell（含返回引用的 tell 方法）
func (r *ActorRef) CanTell(method string) bool {
	return slices.Contains(r.tell, method) || slices.Contains(r.tellRef, method)
}

// CanAsk 方法是否可 ask/future（含返回引用的 ask 方法）
func (r *ActorRef) CanAsk(method string) bool {
	return slices.Contains(r.ask, method) || slices.Contains(r.askRef, method)
}

// IsBound 是否已绑定投递通道
func (r *ActorRef) IsBound() bool {
	return r.channel != nil
}

// Bind 为解码得到的引用绑定投递通道，已绑定时不覆盖
func (r *ActorRef) Bind(channel IChannel) *ActorRef {
	if r.channel == nil {
		r.channel = channel
	}
	return r
}

// Equal URL 相同即相等
// 空引用只与空引用相等，other 可以是带类型的空指针
func (r *ActorRef) Equal(other IReferable) bool {
	var o *ActorRef
	if !reflectx.IsNil(other) {
		o = other.Ref()
	}
	if r == nil || o == nil {
		return r == nil && o == nil
	}
	return r.url == o.url
}

// Hash 只由 URL 计算，空引用为 0
func (r *ActorRef) Hash() uint64 {
	if r == nil {
		return 0
	}
	return xxhash.Sum64String(r.url)
}

// Key 用作 map 键
func (r *ActorRef) Key() string {
	if r == nil {
		return ""
	}
	return r.url
}

func (r *ActorRef) String() string {
	if r == nil {
		return "Actor(nil)"
	}
	return fmt.Sprintf("Actor(url=%s, class=%s)", r.url, r.class)
}

// Send 直接投递一条协议消息
func (r *ActorRef) Send(msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if r.channel == nil {
		return errs.ErrNoChannel
	}
	r.channel.Send(msg)
	return nil
}

// Tell 单向调用，不等待处理
func (r *ActorRef) Tell(method string, params ...any) error {
	if method == StopMethod {
		return r.Send(NewStop())
	}
	if !r.CanTell(method) {
		return errs.ErrMethodNotDeclaredName(method)
	}
	return r.Send(NewTell(method, params))
}

// Stop 请求 actor 停止，之后发送的消息不会再被处理
func (r *ActorRef) Stop() error {
	return r.Tell(StopMethod)
}

// Ask 同步调用，阻塞到应答或超时。timeout <= 0 使用 DefaultAskTimeout。
// 用户方法的错误在 Result.Err 中返回，返回的 error 只表示超时或调用本身无法发出
func (r *ActorRef) Ask(timeout time.Duration, method string, params ...any) (Result, error) {
	if !r.CanAsk(method) {
		return Result{}, errs.ErrMethodNotDeclaredName(method)
	}
	if timeout <= 0 {
		timeout = DefaultAskTimeout()
	}
	reply := NewMailbox()
	cid := newCorrelationID()
	if err := r.Send(NewAsk(method, params, reply, cid)); err != nil {
		return Result{}, err
	}
	deadline := time.Now().Add(timeout)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return Result{}, errs.ErrTimeout
		}
		msg, err := reply.Receive(left)
		if err != nil {
			return Result{}, err
		}
		if msg.Type == MsgAskResponse && msg.CorrelationID == cid {
			return msg.Result, nil
		}
	}
}

// Future 异步调用，立即返回
func (r *ActorRef) Future(method string, params ...any) (*Future, error) {
	if !r.CanAsk(method) {
		return nil, errs.ErrMethodNotDeclaredName(method)
	}
	f := newFuture(method)
	if err := r.Send(NewFuture(method, params, f.reply, f.cid)); err != nil {
		return nil, err
	}
	f.watch()
	return f, nil
}
