package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gin-todo-rpc/internal/transport/http/rpc"
)

const fastThreshold = 100 * time.Millisecond

// RPCLog 每个过程一个实例；只观察，不改变流程
func RPCLog(l *zap.Logger, slow time.Duration) func(rpc.Meta) gin.HandlerFunc {
	if slow <= 0 {
		slow = 2 * time.Second
	}
	return func(m rpc.Meta) gin.HandlerFunc {
		return func(c *gin.Context) {
			start := time.Now()
			c.Next()
			dur := time.Since(start)

			fields := []zap.Field{
				zap.String("rid", c.GetString(KeyRequestID)),
				zap.String("path", m.Path),
				zap.String("type", string(m.Type)),
				zap.Duration("duration", dur),
				zap.String("perf", perfCategory(dur, slow)),
			}
			if rc := rpc.FromGin(c); rc.User != nil {
				fields = append(fields, zap.String("user_id", rc.User.ID), zap.String("role", string(rc.User.Role)))
			}
			if v, ok := c.Get(rpc.KeyInput); ok {
				if raw, _ := v.([]byte); len(raw) > 0 {
					fields = append(fields, zap.String("input", m.Redactor.Redact(raw)))
				}
			}

			e := rpc.ErrorOf(c)
			if e == nil {
				observeRPC(m.Path, "OK", dur)
				fields = append(fields, zap.String("outcome", "ok"))
				if dur > slow {
					l.Warn("rpc slow", fields...)
				} else {
					l.Info("rpc", fields...)
				}
				return
			}

			observeRPC(m.Path, string(e.Kind), dur)
			fields = append(fields, zap.String("outcome", "error"), zap.String("kind", string(e.Kind)), zap.String("msg", e.Msg))
			if e.Err != nil {
				fields = append(fields, zap.Error(e.Err))
			}
			if clientError(e.Kind) {
				l.Warn("rpc failed", fields...)
			} else {
				l.Error("rpc failed", fields...)
			}
		}
	}
}

func clientError(k rpc.Kind) bool {
	switch k {
	case rpc.KindUnauthorized, rpc.KindForbidden, rpc.KindNotFound,
		rpc.KindBadRequest, rpc.KindConflict, rpc.KindTooManyRequests:
		return true
	}
	return false
}

func perfCategory(d, slow time.Duration) string {
	switch {
	case d < fastThreshold:
		return "fast"
	case d <= slow:
		return "normal"
	default:
		return "slow"
	}
}
