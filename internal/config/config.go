// Package config 提供配置管理
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 运行环境
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config 应用配置
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	API       APIConfig
	Scheduler SchedulerConfig
	Metrics   MetricsConfig
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name      string
	Env       string
	Port      int
	LogLevel  string
	LogFormat string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	RateLimit   int
	Timeout     time.Duration
	MaxBodySize int64
	CORS        CORSConfig
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool
	Origins []string
}

// SchedulerConfig 排课引擎配置
type SchedulerConfig struct {
	DefaultTimeout time.Duration
	MaxNodes       int
	BatchWorkers   int
	PinTeacher     bool
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load 加载 .env 和环境变量，环境变量优先
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:      v.GetString("APP_NAME"),
			Env:       v.GetString("APP_ENV"),
			Port:      v.GetInt("APP_PORT"),
			LogLevel:  v.GetString("APP_LOG_LEVEL"),
			LogFormat: v.GetString("APP_LOG_FORMAT"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DATABASE_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			Name:            v.GetString("DB_NAME"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			SSLMode:         v.GetString("DB_SSL_MODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		API: APIConfig{
			RateLimit:   v.GetInt("API_RATE_LIMIT"),
			Timeout:     v.GetDuration("API_TIMEOUT"),
			MaxBodySize: v.GetInt64("API_MAX_BODY_SIZE"),
			CORS: CORSConfig{
				Enabled: v.GetBool("API_CORS_ENABLED"),
				Origins: splitAndTrim(v.GetString("API_CORS_ORIGINS")),
			},
		},
		Scheduler: SchedulerConfig{
			DefaultTimeout: v.GetDuration("SCHEDULER_TIMEOUT"),
			MaxNodes:       v.GetInt("SCHEDULER_MAX_NODES"),
			BatchWorkers:   v.GetInt("SCHEDULER_BATCH_WORKERS"),
			PinTeacher:     v.GetBool("SCHEDULER_PIN_TEACHER"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "kebiao")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("APP_PORT", 7012)
	v.SetDefault("APP_LOG_LEVEL", "info")
	v.SetDefault("APP_LOG_FORMAT", "json")

	v.SetDefault("DATABASE_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", "kebiao")
	v.SetDefault("DB_USER", "kebiao")
	v.SetDefault("DB_PASSWORD", "kebiao")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	v.SetDefault("API_RATE_LIMIT", 100)
	v.SetDefault("API_TIMEOUT", "60s")
	v.SetDefault("API_MAX_BODY_SIZE", 10<<20)
	v.SetDefault("API_CORS_ENABLED", true)
	v.SetDefault("API_CORS_ORIGINS", "*")

	v.SetDefault("SCHEDULER_TIMEOUT", "30s")
	v.SetDefault("SCHEDULER_MAX_NODES", 1_000_000)
	v.SetDefault("SCHEDULER_BATCH_WORKERS", 4)
	v.SetDefault("SCHEDULER_PIN_TEACHER", false)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	switch c.App.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("无效的 APP_ENV: %q", c.App.Env)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("无效的 APP_PORT: %d", c.App.Port)
	}
	if c.Scheduler.DefaultTimeout <= 0 {
		return fmt.Errorf("SCHEDULER_TIMEOUT 必须为正数")
	}
	if c.Scheduler.MaxNodes <= 0 {
		return fmt.Errorf("SCHEDULER_MAX_NODES 必须为正数")
	}
	if c.Scheduler.BatchWorkers <= 0 {
		return fmt.Errorf("SCHEDULER_BATCH_WORKERS 必须为正数")
	}
	return nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == EnvTest
}

// 显式指定的配置文件不存在时 viper 返回 *fs.PathError 而非 ConfigFileNotFoundError
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
