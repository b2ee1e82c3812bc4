package actor

import (
	"time"

	"github.com/dzm2020/gactor/pkg/glog"
	"go.uber.org/zap"
)

// InvokeFunc 一次方法调用
type InvokeFunc func(method string, params []any) Result

// InvokeMiddleware 包装方法调用，按注册顺序由外到内执行
type InvokeMiddleware func(next InvokeFunc) InvokeFunc

// chain 将已注册的中间件应用到调用上，没有中间件时原样返回
func chain(middlewares []InvokeMiddleware, invoke InvokeFunc) InvokeFunc {
	if invoke == nil {
		return nil
	}
	wrapped := invoke
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw := middlewares[i]
		if mw == nil {
			continue
		}
		wrapped = mw(wrapped)
	}
	return wrapped
}

// LogMiddleware 调用失败时记录 debug 日志，slow > 0 时记录慢调用
func LogMiddleware(url string, slow time.Duration) InvokeMiddleware {
	return func(next InvokeFunc) InvokeFunc {
		return func(method string, params []any) Result {
			start := time.Now()
			result := next(method, params)
			cost := time.Since(start)
			if result.Failed() {
				glog.Debug("actor invoke failed", zap.String("url", url), zap.String("method", method),
					zap.Error(result.Err))
			}
			if slow > 0 && cost >= slow {
				glog.Warn("actor invoke slow", zap.String("url", url), zap.String("method", method),
					zap.Duration("cost", cost))
			}
			return result
		}
	}
}
