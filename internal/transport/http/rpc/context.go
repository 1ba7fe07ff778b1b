package rpc

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gin-todo-rpc/internal/domain"
)

// gin 上下文里的 key
const (
	KeyContext = "rpc.context"
	KeyInput   = "rpc.input"
	KeyError   = "rpc.error"
)

// AuthUser 上下文里的身份投影
type AuthUser = domain.Identity

// Context 单次调用的上下文，只在请求内存活
type Context struct {
	Req    *http.Request
	Writer http.ResponseWriter
	User   *AuthUser
}

// WithUser 返回新值，原 Context 不变
func (c Context) WithUser(u AuthUser) Context {
	c.User = &u
	return c
}

func (c Context) Ctx() context.Context {
	if c.Req == nil {
		return context.Background()
	}
	return c.Req.Context()
}

func FromGin(c *gin.Context) Context {
	if v, ok := c.Get(KeyContext); ok {
		if rc, ok := v.(Context); ok {
			rc.Req, rc.Writer = c.Request, c.Writer
			return rc
		}
	}
	return Context{Req: c.Request, Writer: c.Writer}
}

func Store(c *gin.Context, rc Context) { c.Set(KeyContext, rc) }
