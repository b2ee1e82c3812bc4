// Package timex 进程共享时间轮
package timex

import (
	"time"

	"github.com/RussellLuo/timingwheel"
)

var tw = timingwheel.NewTimingWheel(10*time.Millisecond, 3600)

func init() {
	tw.Start()
}

// AfterFunc d 之后在时间轮协程中执行 f，返回的 Timer 可 Stop
func AfterFunc(d time.Duration, f func()) *timingwheel.Timer {
	return tw.AfterFunc(d, f)
}
