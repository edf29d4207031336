package config

import (
	"fmt"
	"strings"

	"github.com/quickprintz/storefront/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Cart     CartConfig     `mapstructure:"cart"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Gallery  GalleryConfig  `mapstructure:"gallery"`
	Contact  ContactConfig  `mapstructure:"contact"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
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

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
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
	ContactRateLimit RateLimitConfig `mapstructure:"contact_rate_limit"`
	RefreshRateLimit RateLimitConfig `mapstructure:"refresh_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// CartConfig 购物车配置
type CartConfig struct {
	Store              string `mapstructure:"store"` // memory / file / redis / database / dynamodb
	StorageKey         string `mapstructure:"storage_key"`
	FileDir            string `mapstructure:"file_dir"`
	AsyncPersist       bool   `mapstructure:"async_persist"`
	IdleMinutes        int    `mapstructure:"idle_minutes"`
	SessionSecret      string `mapstructure:"session_secret"`
	SessionExpireHours int    `mapstructure:"session_expire_hours"`
}

// StorageConfig 设计素材对象存储配置
type StorageConfig struct {
	Provider          string   `mapstructure:"provider"` // supabase / gcs
	ProjectURL        string   `mapstructure:"project_url"`
	AnonKey           string   `mapstructure:"anon_key"`
	Bucket            string   `mapstructure:"bucket"`
	Prefix            string   `mapstructure:"prefix"`
	Public            bool     `mapstructure:"public"`
	PageSize          int      `mapstructure:"page_size"`
	SignedURLTTLHours int      `mapstructure:"signed_url_ttl_hours"`
	ExcludedFolders   []string `mapstructure:"excluded_folders"`
	CredentialsFile   string   `mapstructure:"credentials_file"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds"`
}

// GalleryConfig 设计素材缓存配置
type GalleryConfig struct {
	StaleMinutes        int `mapstructure:"stale_minutes"`
	GCMinutes           int `mapstructure:"gc_minutes"`
	WarmIntervalMinutes int `mapstructure:"warm_interval_minutes"`
}

// ContactConfig 联系表单配置
type ContactConfig struct {
	ForwardURL     string `mapstructure:"forward_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CaptchaConfig 图片验证码配置
type CaptchaConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Length        int  `mapstructure:"length"`
	Width         int  `mapstructure:"width"`
	Height        int  `mapstructure:"height"`
	NoiseCount    int  `mapstructure:"noise_count"`
	ShowLine      int  `mapstructure:"show_line"`
	ExpireSeconds int  `mapstructure:"expire_seconds"`
	MaxStore      int  `mapstructure:"max_store"`
}

// DynamoDBConfig DynamoDB 购物车快照配置
type DynamoDBConfig struct {
	Region   string `mapstructure:"region"`
	Table    string `mapstructure:"table"`
	Endpoint string `mapstructure:"endpoint"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")   // 如果从 cmd/server 运行
	v.AddConfigPath("./etc") // etc 文件夹

	setDefaults(v)

	// 环境变量支持（例如 storage.anon_key -> STORAGE_ANON_KEY）
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
	cfg.warnMissingCredentials()
	return &cfg
}

// warnMissingCredentials 凭证缺失只告警，等到实际调用时再失败
func (c *Config) warnMissingCredentials() {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Provider)) {
	case "gcs":
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			logger.Warnw("config_storage_bucket_missing", "provider", "gcs")
		}
	default:
		if strings.TrimSpace(c.Storage.ProjectURL) == "" || strings.TrimSpace(c.Storage.AnonKey) == "" {
			logger.Warnw("config_storage_credentials_missing",
				"provider", "supabase",
				"hint", "design listing will fail until storage.project_url and storage.anon_key are set",
			)
		}
	}
	if strings.EqualFold(strings.TrimSpace(c.Cart.Store), "dynamodb") && strings.TrimSpace(c.DynamoDB.Table) == "" {
		logger.Warnw("config_dynamodb_table_missing")
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "storefront.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/storefront.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "qp")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.queues", map[string]int{
		"default": 5,
		"gallery": 1,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Cart-Token",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.contact_rate_limit.window_seconds", 600)
	v.SetDefault("security.contact_rate_limit.max_requests", 5)
	v.SetDefault("security.refresh_rate_limit.window_seconds", 60)
	v.SetDefault("security.refresh_rate_limit.max_requests", 2)
	v.SetDefault("cart.store", "file")
	v.SetDefault("cart.storage_key", "quickprintz-cart")
	v.SetDefault("cart.file_dir", "./data/carts")
	v.SetDefault("cart.async_persist", true)
	v.SetDefault("cart.idle_minutes", 30)
	v.SetDefault("cart.session_secret", "cart-change-me-in-production")
	v.SetDefault("cart.session_expire_hours", 720)
	v.SetDefault("storage.provider", "supabase")
	v.SetDefault("storage.project_url", "")
	v.SetDefault("storage.anon_key", "")
	v.SetDefault("storage.bucket", "designs")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.public", true)
	v.SetDefault("storage.page_size", 100)
	v.SetDefault("storage.signed_url_ttl_hours", 24)
	v.SetDefault("storage.excluded_folders", []string{"other"})
	v.SetDefault("storage.credentials_file", "")
	v.SetDefault("storage.timeout_seconds", 15)
	v.SetDefault("gallery.stale_minutes", 5)
	v.SetDefault("gallery.gc_minutes", 10)
	v.SetDefault("gallery.warm_interval_minutes", 4)
	v.SetDefault("contact.forward_url", "")
	v.SetDefault("contact.timeout_seconds", 10)
	v.SetDefault("captcha.enabled", false)
	v.SetDefault("captcha.length", 5)
	v.SetDefault("captcha.width", 240)
	v.SetDefault("captcha.height", 80)
	v.SetDefault("captcha.noise_count", 2)
	v.SetDefault("captcha.show_line", 2)
	v.SetDefault("captcha.expire_seconds", 300)
	v.SetDefault("captcha.max_store", 10240)
	v.SetDefault("dynamodb.region", "us-east-1")
	v.SetDefault("dynamodb.table", "")
	v.SetDefault("dynamodb.endpoint", "")
}
