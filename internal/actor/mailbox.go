package actor

import (
	"sync/atomic"
	"time"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/lib/mpsc"
)

var _ IChannel = (*Mailbox)(nil)

// Mailbox 无界 FIFO 邮箱，多生产者，单消费者
type Mailbox struct {
	queue         *mpsc.Queue[*Message]
	signal        chan struct{}
	inCnt, outCnt atomic.Uint64
}

func NewMailbox() *Mailbox {
	return &Mailbox{
		queue:  mpsc.New[*Message](),
		signal: make(chan struct{}, 1),
	}
}

// Send 入队并唤醒消费者，永不阻塞
func (mb *Mailbox) Send(msg *Message) {
	if msg == nil {
		return
	}
	mb.queue.Push(msg)
	mb.inCnt.Add(1)
	select {
	case mb.signal <- struct{}{}:
	default:
	}
}

// Receive 阻塞直到有消息或超时，timeout <= 0 表示一直等待。
// 超时返回 errs.ErrTimeout
func (mb *Mailbox) Receive(timeout time.Duration) (*Message, error) {
	var after <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		after = timer.C
	}
	for {
		if msg, ok := mb.queue.Pop(); ok {
			mb.outCnt.Add(1)
			return msg, nil
		}
		select {
		case <-mb.signal:
		case <-after:
			// 超时前最后一次检查，避免信号与定时器同时就绪时丢消息
			if msg, ok := mb.queue.Pop(); ok {
				mb.outCnt.Add(1)
				return msg, nil
			}
			return nil, errs.ErrTimeout
		}
	}
}

func (mb *Mailbox) Len() int {
	return mb.queue.Len()
}

func (mb *Mailbox) IsEmpty() bool {
	return mb.queue.Empty()
}

// In 累计入队数
func (mb *Mailbox) In() uint64 {
	return mb.inCnt.Load()
}

// Out 累计出队数
func (mb *Mailbox) Out() uint64 {
	return mb.outCnt.Load()
}
