package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	// 单请求超时
	RequestTimeoutSec int
	CORSOrigins       []string `mapstructure:"corsOrigins"`
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
	// RPC 输入日志：额外脱敏的 key（精确匹配），以及截断长度
	RedactKeys    []string `mapstructure:"redactKeys"`
	MaxInputBytes int      `mapstructure:"maxInputBytes"`
	SlowMs        int      `mapstructure:"slowMs"`
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	VerifyTokenTTLMin int
	LeewaySec         int
}

type Redis struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	StatsTTLSec int    `mapstructure:"statsTTLSec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Mail struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	// 验证链接前缀，token 拼在后面
	VerifyURL string `mapstructure:"verifyURL"`
}

type Limits struct {
	RPS           float64
	Burst         int
	PerIPRPS      float64 `mapstructure:"perIPRPS"`
	PerIPBurst    int     `mapstructure:"perIPBurst"`
	MaxConcurrent int64
	QueueWaitMs   int `mapstructure:"queueWaitMs"`
	MaxBodyBytes  int64
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Mail   Mail
	Limits Limits
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "todo-rpc")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.maxInputBytes", 1024)
	v.SetDefault("log.slowMs", 2000)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "todo-rpc")
	v.SetDefault("jwt.accessTokenTTLMin", 60*24)
	v.SetDefault("jwt.verifyTokenTTLMin", 60*24)
	v.SetDefault("jwt.leewaySec", 60)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.statsTTLSec", 30)
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIPRPS", 20)
	v.SetDefault("limits.perIPBurst", 40)
	v.SetDefault("limits.maxConcurrent", 300)
	v.SetDefault("limits.queueWaitMs", 200)
	v.SetDefault("limits.maxBodyBytes", 1<<20)
}

// Load 读取失败直接退出
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}

func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("jwt.secret must be at least 16 bytes")
	}
	switch c.DB.Driver {
	case "postgres", "mysql", "memory":
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	if c.DB.Driver != "memory" && c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required for driver %q", c.DB.Driver)
	}
	return nil
}
