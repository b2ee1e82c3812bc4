// Package workers 基于 ants 的短任务协程池
package workers

import (
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/dzm2020/gactor/pkg/glog"
	"go.uber.org/zap"
)

var (
	goCount    atomic.Int64
	panicCount atomic.Uint64
	pool       *ants.Pool
)

func init() {
	pool, _ = ants.NewPool(5000, ants.WithNonblocking(false))
}

// Submit 提交任务，池已关闭时回退到同步执行
func Submit(fn func(), recoverFun func(err interface{})) {
	err := pool.Submit(func() {
		goCount.Add(1)
		Try(fn, recoverFun)
		goCount.Add(-1)
	})
	if err != nil {
		glog.Warn("workers: submit failed, run inline", zap.Error(err))
		Try(fn, recoverFun)
	}
}

func Try(fn func(), reFun func(err interface{})) {
	defer func() {
		if err := recover(); err != nil {
			panicCount.Add(1)
			if reFun != nil {
				reFun(err)
			}
		}
	}()
	fn()
}

// Running 正在执行的任务数
func Running() int64 {
	return goCount.Load()
}

// PanicCount 累计 panic 次数
func PanicCount() uint64 {
	return panicCount.Load()
}
