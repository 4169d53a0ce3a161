package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Mail      MailConfig
	Analytics AnalyticsConfig
	Sweep     SweepConfig
	Reset     ResetConfig
	Server    ServerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig holds the shared-secret gates and the session token settings.
// The passcodes mirror the two fixed strings the frontend used to compare
// client-side; here they are enforced at the API boundary instead.
type AuthConfig struct {
	AppPasscode   string
	ResetPasscode string
	TokenSecret   string
	TokenTTL      time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MailConfig configures the outbound report email transport.
type MailConfig struct {
	SendGridKey   string
	FromName      string
	FromEmail     string
	SubjectPrefix string
	Workers       int
	MaxRetries    int
}

// AnalyticsConfig governs cache behaviour for the analytics read path.
type AnalyticsConfig struct {
	CacheTTL        time.Duration
	StreamHeartbeat time.Duration
}

// SweepConfig controls the per-session sweep list cache.
type SweepConfig struct {
	SessionTTL time.Duration
}

// ResetConfig bounds the bulk wipe batches.
type ResetConfig struct {
	BatchSize int
}

// ServerConfig holds HTTP-level tuning.
type ServerConfig struct {
	RequestTimeout time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		AppPasscode:   v.GetString("APP_PASSCODE"),
		ResetPasscode: v.GetString("RESET_PASSCODE"),
		TokenSecret:   v.GetString("TOKEN_SECRET"),
		TokenTTL:      parseDuration(v.GetString("TOKEN_TTL"), 12*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Mail = MailConfig{
		SendGridKey:   v.GetString("SENDGRID_API_KEY"),
		FromName:      v.GetString("MAIL_FROM_NAME"),
		FromEmail:     v.GetString("MAIL_FROM_EMAIL"),
		SubjectPrefix: v.GetString("MAIL_SUBJECT_PREFIX"),
		Workers:       v.GetInt("MAIL_WORKERS"),
		MaxRetries:    v.GetInt("MAIL_MAX_RETRIES"),
	}

	cfg.Analytics = AnalyticsConfig{
		CacheTTL:        parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), time.Minute),
		StreamHeartbeat: parseDuration(v.GetString("ANALYTICS_STREAM_HEARTBEAT"), 30*time.Second),
	}

	cfg.Sweep = SweepConfig{
		SessionTTL: parseDuration(v.GetString("SWEEP_SESSION_TTL"), 18*time.Hour),
	}

	batch := v.GetInt("RESET_BATCH_SIZE")
	if batch <= 0 || batch > 400 {
		batch = 400
	}
	cfg.Reset = ResetConfig{BatchSize: batch}

	cfg.Server = ServerConfig{
		RequestTimeout: parseDuration(v.GetString("SERVER_REQUEST_TIMEOUT"), 15*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "phone_slot")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("APP_PASSCODE", "scan123")
	v.SetDefault("RESET_PASSCODE", "112189")
	v.SetDefault("TOKEN_SECRET", "dev_secret")
	v.SetDefault("TOKEN_TTL", "12h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM_NAME", "Phone Collection App")
	v.SetDefault("MAIL_FROM_EMAIL", "noreply@example.edu")
	v.SetDefault("MAIL_SUBJECT_PREFIX", "")
	v.SetDefault("MAIL_WORKERS", 1)
	v.SetDefault("MAIL_MAX_RETRIES", 3)

	v.SetDefault("ANALYTICS_CACHE_TTL", "1m")
	v.SetDefault("ANALYTICS_STREAM_HEARTBEAT", "30s")
	v.SetDefault("SWEEP_SESSION_TTL", "18h")
	v.SetDefault("RESET_BATCH_SIZE", 400)
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "15s")
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
