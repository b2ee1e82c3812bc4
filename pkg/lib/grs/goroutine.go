// Package grs 带等待和 panic 捕获的协程启动器
package grs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var ErrWaitTimeout = errors.New("grs: wait goroutines timeout")

// Group 跟踪一组长期运行的协程，Wait 用于关闭时等待全部退出
type Group struct {
	wg           sync.WaitGroup
	goCount      atomic.Int64
	panicCount   atomic.Uint64
	panicHandler func(any)
}

// Default 进程级默认 Group
var Default = NewGroup(nil)

func NewGroup(panicHandler func(any)) *Group {
	return &Group{panicHandler: panicHandler}
}

// Go 启动协程，f 内 panic 会被捕获并交给 panicHandler
func (g *Group) Go(f func()) {
	g.wg.Add(1) // 启动前Add，避免竞态
	g.goCount.Add(1)
	go func() {
		defer func() {
			g.goCount.Add(-1)
			g.wg.Done()
			if r := recover(); r != nil {
				g.panicCount.Add(1)
				if g.panicHandler != nil {
					g.panicHandler(r)
				}
			}
		}()
		f()
	}()
}

// Wait 等待所有协程退出或 ctx 结束
func (g *Group) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrWaitTimeout
	}
}

// Count 当前存活协程数
func (g *Group) Count() int64 {
	return g.goCount.Load()
}

// PanicCount 累计 panic 次数
func (g *Group) PanicCount() uint64 {
	return g.panicCount.Load()
}

// Try 同步执行 f 并捕获 panic
func Try(f func(), reFun func(err any)) {
	defer func() {
		if r := recover(); r != nil && reFun != nil {
			reFun(r)
		}
	}()
	f()
}
