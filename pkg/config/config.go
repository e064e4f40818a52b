package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session storage backends.
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
	SessionBackendSQL   = "sql"
)

type Config struct {
	Env    string
	Locale string

	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	SQL     SQLConfig
	Log     LogConfig
	Gate    GateConfig
	Export  ExportConfig
}

// APIConfig describes how the portal backend is reached.
type APIConfig struct {
	BaseURL       string
	Timeout       time.Duration
	AccessToken   string
	PublicPaths   []string
	ReissuePath   string
	UserAgent     string
	EnableMetrics bool
}

// SessionConfig selects where the signed-in state is persisted.
type SessionConfig struct {
	Backend  string
	FilePath string
	Key      string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SQLConfig configures the SQL session backend.
type SQLConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type LogConfig struct {
	Level  string
	Format string
}

// GateConfig tunes navigation authorization.
type GateConfig struct {
	LandingPath string
	LoginPath   string
}

// ExportConfig configures schedule exports.
type ExportConfig struct {
	Dir string
}

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
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Locale = v.GetString("LOCALE")

	cfg.API = APIConfig{
		BaseURL:       strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout:       parseDuration(v.GetString("HTTP_TIMEOUT"), 10*time.Second),
		AccessToken:   v.GetString("ACCESS_TOKEN"),
		PublicPaths:   splitAndTrim(v.GetString("API_PUBLIC_PATHS")),
		ReissuePath:   v.GetString("API_REISSUE_PATH"),
		UserAgent:     v.GetString("API_USER_AGENT"),
		EnableMetrics: v.GetBool("ENABLE_METRICS"),
	}

	cfg.Session = SessionConfig{
		Backend:  strings.ToLower(v.GetString("SESSION_BACKEND")),
		FilePath: v.GetString("SESSION_FILE"),
		Key:      v.GetString("SESSION_KEY"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.SQL = SQLConfig{
		Driver:       v.GetString("SESSION_DB_DRIVER"),
		DSN:          v.GetString("SESSION_DB_DSN"),
		MaxOpenConns: v.GetInt("SESSION_DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("SESSION_DB_MAX_IDLE_CONNS"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Gate = GateConfig{
		LandingPath: v.GetString("LANDING_PATH"),
		LoginPath:   v.GetString("LOGIN_PATH"),
	}

	cfg.Export = ExportConfig{Dir: v.GetString("EXPORT_DIR")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOCALE", "ko")

	v.SetDefault("API_BASE_URL", "http://localhost:8080/api")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("ACCESS_TOKEN", "")
	v.SetDefault("API_PUBLIC_PATHS", "/user/login,/user/id,/user/sign-up,/user/access-token,/mail/verify")
	v.SetDefault("API_REISSUE_PATH", "/user/access-token")
	v.SetDefault("API_USER_AGENT", "portalctl")
	v.SetDefault("ENABLE_METRICS", false)

	v.SetDefault("SESSION_BACKEND", SessionBackendFile)
	v.SetDefault("SESSION_FILE", ".portal/session.json")
	v.SetDefault("SESSION_KEY", "authentication")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_DB_DRIVER", "sqlite")
	v.SetDefault("SESSION_DB_DSN", ".portal/session.db")
	v.SetDefault("SESSION_DB_MAX_OPEN_CONNS", 1)
	v.SetDefault("SESSION_DB_MAX_IDLE_CONNS", 1)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("LANDING_PATH", "/")
	v.SetDefault("LOGIN_PATH", "/login")

	v.SetDefault("EXPORT_DIR", "./exports")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
