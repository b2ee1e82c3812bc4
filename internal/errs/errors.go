// Package errs 运行时错误定义
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ========== Actor 相关错误 ==========

var (
	// ErrTimeout 在超时时间内没有收到消息
	ErrTimeout = errors.New("actor: receive timeout")
	// ErrMethodNotFound 对象上不存在声明的方法
	ErrMethodNotFound = errors.New("actor: method not found")
	// ErrMethodNotDeclared 方法不在引用的能力集合中
	ErrMethodNotDeclared = errors.New("actor: method not declared")
	// ErrNotReference 引用返回方法的结果无法规范化为 ActorRef
	ErrNotReference = errors.New("actor: value is not an actor reference")
	// ErrInvocationPanic 用户方法 panic
	ErrInvocationPanic = errors.New("actor: invocation panic")
	// ErrBadParams 参数个数或类型与方法签名不符
	ErrBadParams = errors.New("actor: bad params")
	// ErrObjectIsNil 绑定的对象为空
	ErrObjectIsNil = errors.New("actor: object is nil")
	// ErrClassIsNil 能力声明为空
	ErrClassIsNil = errors.New("actor: class is nil")
	// ErrNoChannel 引用未绑定投递通道
	ErrNoChannel = errors.New("actor: reference has no channel")
)

// ========== 消息相关错误 ==========

var (
	ErrMessageIsNil         = errors.New("message is nil")
	ErrMessageMethodIsEmpty = errors.New("message method is empty")
	ErrResponseChannelIsNil = errors.New("message response channel is nil")
)

// ========== Host 相关错误 ==========

var (
	ErrActorNotFound       = errors.New("host: actor not found")
	ErrActorAlreadyExists  = errors.New("host: actor already exists")
	ErrInvalidURL          = errors.New("host: invalid url")
	ErrHostShuttingDown    = errors.New("host: shutting down")
	ErrHostNotStarted      = errors.New("host: not started")
	ErrUnknownTransport    = errors.New("transport: unknown type")
	ErrTransportNotRunning = errors.New("transport: not running")
)

// RemoteError 远端执行失败，只保留错误文本
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string {
	return e.Msg
}

// NewRemoteError 空文本返回 nil
func NewRemoteError(msg string) error {
	if msg == "" {
		return nil
	}
	return &RemoteError{Msg: msg}
}

func ErrMethodNotFoundName(method string) error {
	return errors.Wrapf(ErrMethodNotFound, "method %q", method)
}

func ErrMethodNotDeclaredName(method string) error {
	return errors.Wrapf(ErrMethodNotDeclared, "method %q", method)
}

func ErrPanic(method string, r any) error {
	return errors.Wrapf(ErrInvocationPanic, "method %q: %v", method, r)
}

func ErrParamCount(method string, want, got int) error {
	return errors.Wrapf(ErrBadParams, "method %q wants %d params, got %d", method, want, got)
}

func ErrParamType(method string, index int, want, got string) error {
	return errors.Wrapf(ErrBadParams, "method %q param %d wants %s, got %s", method, index, want, got)
}

func ErrNotReferenceType(typ string) error {
	return errors.Wrapf(ErrNotReference, "got %s", typ)
}

func ErrActorNotFoundURL(url string) error {
	return errors.Wrapf(ErrActorNotFound, "url %s", url)
}

func ErrActorExists(url string) error {
	return errors.Wrapf(ErrActorAlreadyExists, "url %s", url)
}

func ErrInvalidURLReason(url, reason string) error {
	return errors.Wrapf(ErrInvalidURL, "%q: %s", url, reason)
}

func ErrUnknownTransportType(typ string) error {
	return errors.Wrapf(ErrUnknownTransport, "%q", typ)
}

func ErrUnsupportedMessageType(msgType string) error {
	return fmt.Errorf("unsupported message type: %s", msgType)
}

// ========== Config 相关错误 ==========

func ErrReadConfigFileFailed(err error) error {
	return errors.Wrap(err, "read config file failed")
}

func ErrUnmarshalConfigFailed(err error) error {
	return errors.Wrap(err, "unmarshal config failed")
}

// ========== Codec 相关错误 ==========

func ErrMarshalMessageFailed(err error) error {
	return errors.Wrap(err, "marshal message failed")
}

func ErrUnmarshalMessageFailed(err error) error {
	return errors.Wrap(err, "unmarshal message failed")
}

func ErrPublishFailed(subject string, err error) error {
	return errors.Wrapf(err, "publish to %s failed", subject)
}
