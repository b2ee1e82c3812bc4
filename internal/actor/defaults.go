package actor

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var defaultAskTimeout atomic.Int64

func init() {
	defaultAskTimeout.Store(int64(10 * time.Second))
}

// DefaultAskTimeout Ask 未指定超时时使用
func DefaultAskTimeout() time.Duration {
	return time.Duration(defaultAskTimeout.Load())
}

func SetDefaultAskTimeout(d time.Duration) {
	if d > 0 {
		defaultAskTimeout.Store(int64(d))
	}
}

func newCorrelationID() string {
	return uuid.NewString()
}
