package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gin-todo-rpc/internal/core/auth"
	"gin-todo-rpc/internal/domain"
	"gin-todo-rpc/internal/transport/http/rpc"
)

// Authenticate 校验 Bearer token 并重新加载用户；角色以库里的为准，不信 token 里的
func Authenticate(j *auth.JWTer, users domain.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			rpc.Abort(c, rpc.Unauthorized("missing or invalid authorization header"))
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			rpc.Abort(c, rpc.Unauthorized("invalid or expired token"))
			return
		}
		u, err := users.FindByID(c.Request.Context(), claims.Subject)
		if err != nil {
			rpc.Abort(c, rpc.Internal("authentication failed", err))
			return
		}
		if u == nil || !u.IsActive {
			rpc.Abort(c, rpc.Unauthorized("user not found or inactive"))
			return
		}
		rpc.Store(c, rpc.FromGin(c).WithUser(u.Identity()))
		c.Next()
	}
}

func bearerToken(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
