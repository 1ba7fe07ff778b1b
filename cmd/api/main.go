package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"gin-todo-rpc/internal/core/auth"
	"gin-todo-rpc/internal/core/cache"
	"gin-todo-rpc/internal/core/config"
	"gin-todo-rpc/internal/core/database"
	"gin-todo-rpc/internal/core/logger"
	"gin-todo-rpc/internal/core/mailer"
	"gin-todo-rpc/internal/core/server"
	"gin-todo-rpc/internal/domain"
	"gin-todo-rpc/internal/repo"
	"gin-todo-rpc/internal/repo/memory"
	"gin-todo-rpc/internal/service"
	"gin-todo-rpc/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.App, cfg.Log)
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	// 存储
	var (
		users domain.UserRepository
		todos domain.TodoRepository
		db    *gorm.DB
	)
	if cfg.DB.Driver == "memory" {
		st := memory.New()
		users, todos = st.Users(), st.Todos()
		log.Warn("using in-memory store, data is lost on restart")
	} else {
		db = mustOpenDB(cfg, log)
		log.Info("database connected", zap.String("driver", cfg.DB.Driver))
		if cfg.DB.AutoMigrate {
			if err := database.Migrate(db); err != nil {
				log.Fatal("automigrate failed", zap.Error(err))
			}
			log.Info("automigrate done")
		}
		users, todos = repo.NewUserRepo(db), repo.NewTodoRepo(db)
	}

	// 缓存（可选）
	var rc *cache.Cache
	if cfg.Redis.Addr != "" {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := pingWithin(rc.Ping, 3*time.Second); err != nil {
			log.Warn("redis unreachable, stats fall back to db", zap.Error(err))
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		Leeway: time.Duration(cfg.JWT.LeewaySec) * time.Second,
	}

	authOpts := []service.AuthOption{service.WithAuthLogger(log)}
	if cfg.Mail.Host != "" {
		m, err := mailer.New(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.Sender)
		if err != nil {
			log.Fatal("mailer init", zap.Error(err))
		}
		authOpts = append(authOpts, service.WithMailer(m, cfg.Mail.VerifyURL, time.Duration(cfg.JWT.VerifyTokenTTLMin)*time.Minute))
	}

	r := router.NewAPIEngine(router.Deps{
		Log:     log,
		Config:  cfg,
		JWT:     jwter,
		Users:   users,
		AuthSvc: service.NewAuthService(users, jwter, rc, authOpts...),
		TodoSvc: service.NewTodoService(todos, nil),
		UserSvc: service.NewUserService(users, rc, time.Duration(cfg.Redis.StatsTTLSec)*time.Second, log, nil),
		Ping: func(ctx context.Context) error {
			if db != nil {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				if err := sqlDB.PingContext(ctx); err != nil {
					return err
				}
			}
			return rc.Ping(ctx)
		},
	})

	// HTTP Server
	errLog, err := logger.ToStdLogger(log, zapcore.ErrorLevel)
	if err != nil {
		log.Fatal("server error log", zap.Error(err))
	}
	srv := server.FromConfig(cfg.App.HTTP, r, errLog)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("todo rpc starting",
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.App.Env),
		zap.String("health", baseURL+"/health"),
		zap.String("rpc", baseURL+router.RPCPrefix),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil {
			log.Fatal("todo rpc start FAILED", zap.Error(err))
		}
	}()
	log.Info("todo rpc started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("server shutdown", zap.Error(err))
	}
	if rc != nil {
		if err := rc.Close(); err != nil {
			log.Warn("redis close", zap.Error(err))
		}
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			log.Warn("db close", zap.Error(err))
		}
	}
	log.Info("todo rpc stopped gracefully")
}

func pingWithin(ping func(context.Context) error, d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return ping(ctx)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
