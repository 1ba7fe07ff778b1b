package rpc

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"gin-todo-rpc/internal/domain"
	resp "gin-todo-rpc/internal/transport/http/response"
)

type Kind string

const (
	KindBadRequest      Kind = "BAD_REQUEST"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindTooManyRequests Kind = "TOO_MANY_REQUESTS"
	KindInternal        Kind = "INTERNAL_SERVER_ERROR"
	KindTimeout         Kind = "TIMEOUT"
)

var kindCode = map[Kind]int{
	KindBadRequest:      resp.CodeBadRequest,
	KindUnauthorized:    resp.CodeUnauthorized,
	KindForbidden:       resp.CodeForbidden,
	KindNotFound:        resp.CodeNotFound,
	KindConflict:        resp.CodeConflict,
	KindTooManyRequests: resp.CodeTooManyRequests,
	KindInternal:        resp.CodeServerError,
	KindTimeout:         resp.CodeTimeout,
}

// Error 统一错误对象；Err 只进日志，不返回给调用方
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Code() int {
	if c, ok := kindCode[e.Kind]; ok {
		return c
	}
	return resp.CodeServerError
}

func BadRequest(msg string) error   { return &Error{Kind: KindBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error     { return &Error{Kind: KindConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// FromError 路由边界统一翻译；未识别的错误一律 Internal
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	var ve validator.ValidationErrors
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrTodoNotFound), errors.Is(err, domain.ErrUserNotFound):
		return &Error{Kind: KindNotFound, Msg: err.Error(), Err: err}
	case errors.Is(err, domain.ErrEmailTaken):
		return &Error{Kind: KindConflict, Msg: err.Error(), Err: err}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &Error{Kind: KindUnauthorized, Msg: err.Error(), Err: err}
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrInvalidRole):
		return &Error{Kind: KindBadRequest, Msg: err.Error(), Err: err}
	case errors.As(err, &ve):
		return &Error{Kind: KindBadRequest, Msg: validationMessage(ve), Err: err}
	case errors.As(err, &mbe):
		return &Error{Kind: KindBadRequest, Msg: "request body too large", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Msg: "request timeout", Err: err}
	}
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

// Abort 写错误信封并终止；错误同时放进 gin 上下文给日志中间件
func Abort(c *gin.Context, err error) {
	e := FromError(err)
	c.Set(KeyError, e)
	code := e.Code()
	c.AbortWithStatusJSON(resp.Status(code), resp.Error(code, e.Msg))
}

// ErrorOf 日志中间件读取本次调用的错误
func ErrorOf(c *gin.Context) *Error {
	if v, ok := c.Get(KeyError); ok {
		if e, ok := v.(*Error); ok {
			return e
		}
	}
	return nil
}
