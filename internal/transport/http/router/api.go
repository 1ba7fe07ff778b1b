package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gin-todo-rpc/internal/core/auth"
	"gin-todo-rpc/internal/core/config"
	"gin-todo-rpc/internal/core/server"
	"gin-todo-rpc/internal/domain"
	"gin-todo-rpc/internal/service"
	mdw "gin-todo-rpc/internal/transport/http/middleware"
	resp "gin-todo-rpc/internal/transport/http/response"
	"gin-todo-rpc/internal/transport/http/rpc"
)

const RPCPrefix = "/api/v1/rpc"

type Deps struct {
	Log    *zap.Logger
	Config *config.Config
	JWT    *auth.JWTer
	Users  domain.UserRepository

	AuthSvc *service.AuthService
	TodoSvc *service.TodoService
	UserSvc *service.UserService

	// 健康检查里探测下游（db/redis），可为空
	Ping func(ctx context.Context) error
}

func NewAPIEngine(d Deps) *gin.Engine {
	cfg := d.Config
	r := server.NewRouter(d.Log, cfg.App.HTTP.CORSOrigins)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
		mdw.RateLimit(rate.Limit(cfg.Limits.RPS), cfg.Limits.Burst),
		mdw.RateLimitPerIP(rate.Limit(cfg.Limits.PerIPRPS), cfg.Limits.PerIPBurst, 10*time.Minute),
		mdw.ConcurrencyLimit(cfg.Limits.MaxConcurrent, time.Duration(cfg.Limits.QueueWaitMs)*time.Millisecond),
		mdw.MaxBodyBytes(cfg.Limits.MaxBodyBytes),
		mdw.Timeout(time.Duration(cfg.App.HTTP.RequestTimeoutSec)*time.Second),
	)
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "procedure not found") })

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			if err := d.Ping(c.Request.Context()); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", mdw.MetricsHandler())

	rr := rpc.NewRouter(r.Group(RPCPrefix), rpc.Options{
		Auth:          mdw.Authenticate(d.JWT, d.Users),
		Logger:        mdw.RPCLog(d.Log, time.Duration(cfg.Log.SlowMs)*time.Millisecond),
		RedactKeys:    cfg.Log.RedactKeys,
		MaxInputBytes: cfg.Log.MaxInputBytes,
	})
	MountAll(rr,
		authModule{svc: d.AuthSvc},
		todoModule{svc: d.TodoSvc},
		userModule{svc: d.UserSvc},
	)

	for _, p := range rr.Procedures() {
		d.Log.Debug("rpc procedure", zap.String("path", p.Path), zap.String("type", string(p.Type)), zap.Bool("protected", p.Protected))
	}
	return r
}
