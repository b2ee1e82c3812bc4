package actor

import (
	"sync"
	"time"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/glog"
	"github.com/dzm2020/gactor/pkg/lib/grs"
	"github.com/dzm2020/gactor/pkg/lib/workers"
	"go.uber.org/zap"
)

// Future 异步调用的结果。私有邮箱只由 watch 协程消费
type Future struct {
	method string
	cid    string
	reply  *Mailbox
	doneCh chan struct{}

	mu        sync.Mutex
	result    Result
	callbacks []func(Result)
}

func newFuture(method string) *Future {
	return &Future{
		method: method,
		cid:    newCorrelationID(),
		reply:  NewMailbox(),
		doneCh: make(chan struct{}),
	}
}

func (f *Future) CorrelationID() string {
	return f.cid
}

func (f *Future) Method() string {
	return f.method
}

// watchers 等待 future 应答的协程
var watchers = grs.NewGroup(func(r any) {
	glog.Error("future watcher panic", zap.Any("err", r))
})

// Watching 仍在等待应答的 future 数
func Watching() int64 {
	return watchers.Count()
}

func (f *Future) watch() {
	watchers.Go(func() {
		for {
			msg, err := f.reply.Receive(0)
			if err != nil {
				continue
			}
			if msg.Type != MsgFutureResponse || msg.CorrelationID != f.cid {
				glog.Warn("future unexpected response", zap.String("cid", f.cid), zap.Stringer("msg", msg))
				continue
			}
			f.complete(msg.Result)
			return
		}
	})
}

func (f *Future) complete(result Result) {
	f.mu.Lock()
	f.result = result
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.doneCh)
	f.mu.Unlock()
	for _, cb := range callbacks {
		f.run(cb, result)
	}
}

func (f *Future) run(cb func(Result), result Result) {
	workers.Submit(func() { cb(result) }, func(err interface{}) {
		glog.Error("future callback panic", zap.String("cid", f.cid), zap.Any("err", err))
	})
}

// Done 非阻塞地检查是否已完成
func (f *Future) Done() bool {
	select {
	case <-f.doneCh:
		return true
	default:
		return false
	}
}

// Result 阻塞到完成或超时，timeout <= 0 一直等待。超时返回 errs.ErrTimeout，之后仍可再次等待
func (f *Future) Result(timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		<-f.doneCh
		return f.load(), nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-f.doneCh:
		return f.load(), nil
	case <-timer.C:
		return Result{}, errs.ErrTimeout
	}
}

// OnComplete 完成后在工作池中执行 cb，已完成时立即提交
func (f *Future) OnComplete(cb func(Result)) {
	if cb == nil {
		return
	}
	f.mu.Lock()
	if f.Done() {
		result := f.result
		f.mu.Unlock()
		f.run(cb, result)
		return
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

func (f *Future) load() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}
