package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Quiz      QuizConfig
	Storage   StorageConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"url"`
	Host     string
	Port     int
	User     string
	Password string
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Charset  string
	LogLevel string `mapstructure:"log_level"`
}

// DSN returns the connection string for the configured driver.
// An explicit URL always wins over the discrete fields.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == DriverMySQL {
		charset := d.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBName, charset)
	}
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.DBName, sslmode)
}

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type AuthConfig struct {
	JWTSecret   string   `mapstructure:"jwt_secret"`
	AdminEmails []string `mapstructure:"admin_emails"`
}

// IsAdminEmail reports whether email is listed in auth.admin_emails.
func (a AuthConfig) IsAdminEmail(email string) bool {
	for _, e := range a.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(email)) && email != "" {
			return true
		}
	}
	return false
}

type RedisConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Host     string
	Port     int
	Password string
	DB       int
}

type TimeBudgetConfig struct {
	Daily    int `mapstructure:"daily"`
	Practice int `mapstructure:"practice"`
	Mock     int `mapstructure:"mock"`
}

type QuizConfig struct {
	Source             string           `mapstructure:"source"`
	Timezone           string           `mapstructure:"timezone"`
	DefaultLevel       string           `mapstructure:"default_level"`
	Subjects           []string         `mapstructure:"subjects"`
	DailyCount         int              `mapstructure:"daily_count"`
	PracticeCount      int              `mapstructure:"practice_count"`
	MockCount          int              `mapstructure:"mock_count"`
	PracticeTests      int              `mapstructure:"practice_tests"`
	FreePracticeTests  int              `mapstructure:"free_practice_tests"`
	TimeBudget         TimeBudgetConfig `mapstructure:"time_budget"`
	SecondsPerQuestion int              `mapstructure:"seconds_per_question"`
	Distribution       map[string]int   `mapstructure:"distribution"`
	SessionTTL         time.Duration    `mapstructure:"session_ttl"`
	DailyCacheTTL      time.Duration    `mapstructure:"daily_cache_ttl"`
}

const (
	SourceDatabase = "database"
	SourceStatic   = "static"
)

// Budget returns the time budget in seconds for a quiz of n questions.
func (q QuizConfig) Budget(mode string, n int) int {
	budget := q.TimeBudget.Daily
	switch mode {
	case "practice":
		budget = q.TimeBudget.Practice
	case "mock":
		budget = q.TimeBudget.Mock
	}
	if q.SecondsPerQuestion > 0 && n*q.SecondsPerQuestion > budget {
		budget = n * q.SecondsPerQuestion
	}
	return budget
}

// Location resolves the exam time zone, defaulting to UTC.
func (q QuizConfig) Location() (*time.Location, error) {
	if q.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(q.Timezone)
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioSecure   bool   `mapstructure:"minio_secure"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ServiceName       string `mapstructure:"service_name"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("quiz.source", SourceDatabase)
	v.SetDefault("quiz.timezone", "Africa/Abidjan")
	v.SetDefault("quiz.default_level", "CM")
	v.SetDefault("quiz.subjects", []string{"culture_generale", "anglais", "logique"})
	v.SetDefault("quiz.daily_count", 3)
	v.SetDefault("quiz.practice_count", 5)
	v.SetDefault("quiz.mock_count", 5)
	v.SetDefault("quiz.practice_tests", 10)
	v.SetDefault("quiz.free_practice_tests", 2)
	v.SetDefault("quiz.time_budget.daily", 600)
	v.SetDefault("quiz.time_budget.practice", 600)
	v.SetDefault("quiz.time_budget.mock", 600)
	v.SetDefault("quiz.session_ttl", "2h")
	v.SetDefault("quiz.daily_cache_ttl", "36h")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")

	v.SetDefault("tracing.service_name", "prepaena-backend")

	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PREPAENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Database
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Supabase
	v.BindEnv("auth.jwt_secret", "SUPABASE_JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// Storage / OSS
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// Validate checks the settings the service cannot run without.
func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.Auth.JWTSecret))
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	q := c.Quiz
	if q.TimeBudget.Daily <= 0 || q.TimeBudget.Practice <= 0 || q.TimeBudget.Mock <= 0 {
		return errors.New("quiz time budgets must be positive")
	}
	if q.SecondsPerQuestion < 0 {
		return errors.New("quiz.seconds_per_question must not be negative")
	}
	if q.DailyCount <= 0 || q.PracticeCount <= 0 || q.MockCount <= 0 {
		return errors.New("quiz question counts must be positive")
	}
	if q.Source != SourceDatabase && q.Source != SourceStatic {
		return fmt.Errorf("unsupported quiz source %q", q.Source)
	}
	if len(q.Distribution) > 0 {
		sum := 0
		for _, pct := range q.Distribution {
			sum += pct
		}
		if sum != 100 {
			return fmt.Errorf("quiz.distribution must sum to 100, got %d", sum)
		}
	}
	if _, err := q.Location(); err != nil {
		return fmt.Errorf("quiz.timezone: %w", err)
	}
	return nil
}
