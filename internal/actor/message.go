package actor

import (
	"fmt"

	"github.com/dzm2020/gactor/internal/errs"
)

// StopMethod 隐式的停止能力，所有引用都可以 tell
const StopMethod = "stop"

// MessageType 消息类型，封闭枚举
type MessageType uint8

const (
	MsgTell MessageType = iota + 1
	MsgAsk
	MsgAskResponse
	MsgFuture
	MsgFutureResponse
	MsgStop
)

func (t MessageType) String() string {
	switch t {
	case MsgTell:
		return "TELL"
	case MsgAsk:
		return "ASK"
	case MsgAskResponse:
		return "ASK_RESPONSE"
	case MsgFuture:
		return "FUTURE"
	case MsgFutureResponse:
		return "FUTURE_RESPONSE"
	case MsgStop:
		return "STOP"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}

// IsRequest 是否需要调用对象方法
func (t MessageType) IsRequest() bool {
	return t == MsgTell || t == MsgAsk || t == MsgFuture
}

// IsResponse 是否为 ask/future 的应答
func (t MessageType) IsResponse() bool {
	return t == MsgAskResponse || t == MsgFutureResponse
}

// IChannel 消息投递端，Send 不阻塞
type IChannel interface {
	Send(msg *Message)
}

// Result 一次调用的结果：成功值或错误，二者只看 Err 是否为空
type Result struct {
	Value any
	Err   error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

func (r Result) Get() (any, error) {
	return r.Value, r.Err
}

// Message 邮箱中流转的消息，入队后不再修改
type Message struct {
	Type            MessageType
	Method          string
	Params          []any
	Result          Result
	ResponseChannel IChannel
	CorrelationID   string
}

// Validate 检查消息形状
func (m *Message) Validate() error {
	if m == nil {
		return errs.ErrMessageIsNil
	}
	switch m.Type {
	case MsgTell:
		if m.Method == "" {
			return errs.ErrMessageMethodIsEmpty
		}
	case MsgAsk, MsgFuture:
		if m.Method == "" {
			return errs.ErrMessageMethodIsEmpty
		}
		if m.ResponseChannel == nil {
			return errs.ErrResponseChannelIsNil
		}
	case MsgAskResponse, MsgFutureResponse, MsgStop:
	default:
		return errs.ErrUnsupportedMessageType(m.Type.String())
	}
	return nil
}

func (m *Message) String() string {
	if m == nil {
		return "<nil>"
	}
	if m.Type.IsResponse() {
		return fmt.Sprintf("%s{cid=%s err=%v}", m.Type, m.CorrelationID, m.Result.Err)
	}
	return fmt.Sprintf("%s{method=%s params=%d cid=%s}", m.Type, m.Method, len(m.Params), m.CorrelationID)
}

func NewTell(method string, params []any) *Message {
	return &Message{Type: MsgTell, Method: method, Params: params}
}

func NewAsk(method string, params []any, reply IChannel, correlationID string) *Message {
	return &Message{Type: MsgAsk, Method: method, Params: params, ResponseChannel: reply, CorrelationID: correlationID}
}

func NewFuture(method string, params []any, reply IChannel, correlationID string) *Message {
	return &Message{Type: MsgFuture, Method: method, Params: params, ResponseChannel: reply, CorrelationID: correlationID}
}

func NewStop() *Message {
	return &Message{Type: MsgStop, Method: StopMethod}
}

// NewResponse 根据请求类型构造应答，tell 没有应答，返回 nil
func NewResponse(req *Message, result Result) *Message {
	switch req.Type {
	case MsgAsk:
		return &Message{Type: MsgAskResponse, Result: result, CorrelationID: req.CorrelationID}
	case MsgFuture:
		return &Message{Type: MsgFutureResponse, Result: result, CorrelationID: req.CorrelationID}
	}
	return nil
}
