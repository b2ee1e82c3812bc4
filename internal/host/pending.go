package host

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/RussellLuo/timingwheel"
	"github.com/duke-git/lancet/v2/maputil"
	"go.uber.org/zap"

	"github.com/dzm2020/gactor/internal/actor"
	"github.com/dzm2020/gactor/pkg/glog"
	"github.com/dzm2020/gactor/pkg/lib/timex"
)

// pendingCall 发往远端的 ask/future 请求，等待应答回到本主机
type pendingCall struct {
	reply  actor.IChannel
	method string
	timer  atomic.Pointer[timingwheel.Timer]
}

// pendingTable 未完成的远程请求，超过 ttl 未应答的条目由时间轮清理
type pendingTable struct {
	calls *maputil.ConcurrentMap[string, *pendingCall]
	ttl   time.Duration
	seq   atomic.Uint64
}

func newPendingTable(ttl time.Duration) *pendingTable {
	return &pendingTable{
		calls: maputil.NewConcurrentMap[string, *pendingCall](16),
		ttl:   ttl,
	}
}

func (p *pendingTable) add(method string, reply actor.IChannel) string {
	key := strconv.FormatUint(p.seq.Add(1), 36)
	call := &pendingCall{reply: reply, method: method}
	p.calls.Set(key, call)
	call.timer.Store(timex.AfterFunc(p.ttl, func() {
		if _, ok := p.calls.GetAndDelete(key); ok {
			glog.Debug("host pending call expired", zap.String("key", key), zap.String("method", method))
		}
	}))
	return key
}

// take 取出并删除条目，已过期或重复应答时返回 false
func (p *pendingTable) take(key string) (*pendingCall, bool) {
	call, ok := p.calls.GetAndDelete(key)
	if !ok {
		return nil, false
	}
	if t := call.timer.Load(); t != nil {
		t.Stop()
	}
	return call, true
}

func (p *pendingTable) remove(key string) {
	p.take(key)
}

func (p *pendingTable) len() int {
	n := 0
	p.calls.Range(func(string, *pendingCall) bool {
		n++
		return true
	})
	return n
}

// clear 关闭时丢弃全部条目
func (p *pendingTable) clear() {
	var keys []string
	p.calls.Range(func(key string, _ *pendingCall) bool {
		keys = append(keys, key)
		return true
	})
	for _, key := range keys {
		p.remove(key)
	}
}
