package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "gin-todo-rpc/internal/transport/http/response"
)

// ConcurrencyLimit 同时在处理的请求不超过 max；排队最多等 wait，wait<=0 时不排队
func ConcurrencyLimit(max int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !acquire(c.Request.Context(), sem, wait) {
			resp.Abort(c, resp.CodeTooManyRequests, "server busy")
			return
		}
		inflight.Inc()
		defer func() {
			inflight.Dec()
			sem.Release(1)
		}()
		c.Next()
	}
}

func acquire(ctx context.Context, sem *semaphore.Weighted, wait time.Duration) bool {
	if wait <= 0 {
		return sem.TryAcquire(1)
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	return sem.Acquire(ctx, 1) == nil
}
