package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "gin-todo-rpc/internal/transport/http/response"
)

// Recovery panic 转成 500 信封，堆栈只进日志
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.String("rid", c.GetString(KeyRequestID)),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				resp.Abort(c, resp.CodeServerError, "internal error")
			}
		}()
		c.Next()
	}
}
