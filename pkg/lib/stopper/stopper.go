package stopper

import "sync/atomic"

// Stopper 一次性关闭标记
type Stopper struct {
	isStopped atomic.Bool
}

func (s *Stopper) IsStop() bool {
	return s.isStopped.Load()
}

// Stop 首次调用返回 true
func (s *Stopper) Stop() bool {
	return s.isStopped.CompareAndSwap(false, true)
}
