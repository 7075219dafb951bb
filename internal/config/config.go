package config

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Remote       RemoteConfig       `mapstructure:"remote"`
	Sync         SyncConfig         `mapstructure:"sync"`
	Pricing      PricingConfig      `mapstructure:"pricing"`
	Notification NotificationConfig `mapstructure:"notification"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Database     DatabaseConfig     `mapstructure:"database"`
	MockAPI      MockAPIConfig      `mapstructure:"mockapi"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Security     SecurityConfig     `mapstructure:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// RemoteConfig 托管集合 API 配置
// 购物车/商品/订单/用户分属两个 MockAPI 项目，因此分别配置基础地址
type RemoteConfig struct {
	CartURL        string `mapstructure:"cart_url"`
	ProductURL     string `mapstructure:"product_url"`
	OrderURL       string `mapstructure:"order_url"`
	UserURL        string `mapstructure:"user_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Tracing        bool   `mapstructure:"tracing"`
}

// SyncConfig 购物车同步与清空对账配置
type SyncConfig struct {
	ClearMaxAttempts  int `mapstructure:"clear_max_attempts"`
	SettleDelayMS     int `mapstructure:"settle_delay_ms"`
	DeleteConcurrency int `mapstructure:"delete_concurrency"`
	SweepDelaySeconds int `mapstructure:"sweep_delay_seconds"`
}

// PricingConfig 阶梯折扣配置
type PricingConfig struct {
	Tier1Threshold int64   `mapstructure:"tier1_threshold"`
	Tier2Threshold int64   `mapstructure:"tier2_threshold"`
	Tier1Rate      float64 `mapstructure:"tier1_rate"`
	Tier2Rate      float64 `mapstructure:"tier2_rate"`
	CurrencySymbol string  `mapstructure:"currency_symbol"`
}

// NotificationConfig 提示消息展示时长（毫秒）
type NotificationConfig struct {
	SuccessMS    int `mapstructure:"success_ms"`
	ErrorMS      int `mapstructure:"error_ms"`
	WarningMS    int `mapstructure:"warning_ms"`
	InfoMS       int `mapstructure:"info_ms"`
	BufferSize   int `mapstructure:"buffer_size"`
	KeepaliveSec int `mapstructure:"keepalive_seconds"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置（仅 mockapi 模式使用）
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// MockAPIConfig 本地模拟托管 API 配置
type MockAPIConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Seed bool   `mapstructure:"seed"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
}

// LoginRateLimitConfig 登录限流配置
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")   // 如果从 cmd/server 运行
	v.AddConfigPath("./etc") // etc 文件夹

	SetDefaults(v)

	// 环境变量支持（例如 remote.cart_url -> REMOTE_CART_URL）
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

// Default 返回仅由默认值构成的配置，测试与工具命令使用
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("默认配置解析失败: %w", err))
	}
	return &cfg
}

// SetDefaults 写入全部默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("remote.cart_url", "http://127.0.0.1:8090/data")
	v.SetDefault("remote.product_url", "http://127.0.0.1:8090/data")
	v.SetDefault("remote.order_url", "http://127.0.0.1:8090")
	v.SetDefault("remote.user_url", "http://127.0.0.1:8090")
	v.SetDefault("remote.timeout_seconds", 15)
	v.SetDefault("remote.tracing", true)
	v.SetDefault("sync.clear_max_attempts", 3)
	v.SetDefault("sync.settle_delay_ms", 500)
	v.SetDefault("sync.delete_concurrency", 8)
	v.SetDefault("sync.sweep_delay_seconds", 30)
	v.SetDefault("pricing.tier1_threshold", 5000)
	v.SetDefault("pricing.tier2_threshold", 20000)
	v.SetDefault("pricing.tier1_rate", 0.10)
	v.SetDefault("pricing.tier2_rate", 0.20)
	v.SetDefault("pricing.currency_symbol", "₹")
	v.SetDefault("notification.success_ms", 3000)
	v.SetDefault("notification.error_ms", 5000)
	v.SetDefault("notification.warning_ms", 4000)
	v.SetDefault("notification.info_ms", 3000)
	v.SetDefault("notification.buffer_size", 16)
	v.SetDefault("notification.keepalive_seconds", 25)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sf")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.queues", map[string]int{
		"default":  6,
		"critical": 4,
	})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/mockapi.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("mockapi.host", "0.0.0.0")
	v.SetDefault("mockapi.port", "8090")
	v.SetDefault("mockapi.seed", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
}
