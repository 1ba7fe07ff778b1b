package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gin-todo-rpc/internal/core/config"
)

// NewRouter 基础引擎：访问日志 + CORS；origins 为空时放开所有来源
func NewRouter(l *zap.Logger, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(l, time.RFC3339, true))
	r.Use(corsFor(origins))
	return r
}

func corsFor(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	// 通配来源不能带 credentials，bearer 走请求头不受影响
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// StartHTTP 阻塞直到服务关闭；Shutdown 触发的 ErrServerClosed 视为正常退出
func StartHTTP(srv *http.Server, l *zap.Logger) error {
	l.Info("http listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration, errLog *log.Logger) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20, // 1MB
		ErrorLog:       errLog,
	}
}

// FromConfig 按 app.http 配置构建
func FromConfig(h config.HTTP, handler http.Handler, errLog *log.Logger) *http.Server {
	return BuildServer(
		Addr(h.Host, h.Port), handler,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
		errLog,
	)
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
