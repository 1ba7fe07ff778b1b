package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "gin-todo-rpc/internal/transport/http/response"
)

// MaxBodyBytes 声明长度超限直接拒绝；chunked 等未声明长度的由读取方遇到 MaxBytesError 时返回 BAD_REQUEST
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, resp.CodeBadRequest, "request body too large")
			return
		}
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
