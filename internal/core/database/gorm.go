package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"

	"gin-todo-rpc/internal/core/logger"
	"gin-todo-rpc/internal/domain"
)

var ErrUnsupportedDriver = errors.New("unsupported db driver")

type Opts struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	Log                *zap.Logger // 可选，gorm 日志转到 zap
}

func NewGorm(o Opts) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch o.Driver {
	case "postgres":
		pc, err := pgconn.ParseConfig(o.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		if o.Log != nil {
			o.Log.Info("postgres target", zap.String("host", pc.Host), zap.Uint16("port", pc.Port),
				zap.String("database", pc.Database), zap.String("user", pc.User))
		}
		dial = postgres.Open(o.DSN)
	case "mysql":
		dsn, err := normalizeMySQLDSN(o.DSN, o.Username, o.Password)
		if err != nil {
			return nil, err
		}
		if o.Log != nil {
			o.Log.Info("mysql dsn", zap.String("dsn", maskMySQLDSN(dsn)))
		}
		dial = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}

	lvl := gormlogger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = gormlogger.Silent
	case "error":
		lvl = gormlogger.Error
	case "info":
		lvl = gormlogger.Info
	}
	gl := gormlogger.Default.LogMode(lvl)
	if o.Log != nil {
		gl = gormlogger.New(log.New(logger.ToWriter(o.Log, zapcore.WarnLevel), "", 0), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         gl,
		TranslateError: true, // 唯一冲突 → gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db = db.Session(&gorm.Session{
		PrepareStmt:            true, // 预编译缓存，提高 QPS
		CreateBatchSize:        200,  // 批量写
		SkipDefaultTransaction: true, // 只在需要时手动开 Tx
	})
	return db, nil
}

// Migrate users 在前，todos 外键依赖它
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Todo{})
}

// Close 进程退出时调用
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// maskMySQLDSN 日志里隐藏密码
func maskMySQLDSN(dsn string) string {
	c, err := mysqldrv.ParseDSN(dsn)
	if err != nil {
		return "<invalid dsn>"
	}
	if c.Passwd != "" {
		c.Passwd = "****"
	}
	return c.FormatDSN()
}

// URL 里已转换成 Config 字段或直接丢弃的参数
var consumedParams = map[string]bool{
	"parseTime":            true,
	"useUnicode":           true,
	"zeroDateTimeBehavior": true,
	"characterEncoding":    true,
	"useSSL":               true,
	"serverTimezone":       true,
	"user":                 true,
	"password":             true,
}

// normalizeMySQLDSN 接受 go-sql-driver 原生 DSN 和 mysql:// / jdbc:mysql:// URL；
// username/password 非空时覆盖 DSN 里的账号，parseTime 固定打开
func normalizeMySQLDSN(input, userOverride, passOverride string) (string, error) {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	var (
		cfg *mysqldrv.Config
		err error
	)
	if strings.HasPrefix(in, "mysql://") {
		cfg, err = mysqlConfigFromURL(in)
	} else {
		cfg, err = mysqldrv.ParseDSN(in)
	}
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if userOverride != "" {
		cfg.User = userOverride
	}
	if passOverride != "" {
		cfg.Passwd = passOverride
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func mysqlConfigFromURL(raw string) (*mysqldrv.Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	cfg := mysqldrv.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}

	q := u.Query()
	if v := q.Get("user"); v != "" {
		cfg.User = v
	}
	if v := q.Get("password"); v != "" {
		cfg.Passwd = v
	}
	switch strings.ToLower(q.Get("useSSL")) {
	case "":
	case "true", "1":
		cfg.TLSConfig = "true"
	case "skip-verify":
		cfg.TLSConfig = "skip-verify"
	case "preferred":
		cfg.TLSConfig = "preferred"
	default:
		cfg.TLSConfig = "false"
	}
	if tz := q.Get("serverTimezone"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("serverTimezone: %w", err)
		}
		cfg.Loc = loc
	}

	params := map[string]string{}
	if v := q.Get("characterEncoding"); v != "" {
		params["charset"] = v
	}
	for k := range q {
		if !consumedParams[k] {
			params[k] = q.Get(k)
		}
	}
	if len(params) > 0 {
		cfg.Params = params
	}
	return cfg, nil
}
