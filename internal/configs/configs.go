package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	AppURL                 string        `validate:"required,hostname_port"`
	StorageDriver          string        `validate:"oneof=sqlite postgres memory"`
	DatabaseDSN            string        `validate:"required_unless=StorageDriver memory"`
	Workers                int           `validate:"gt=0"`
	QueueSize              int           `validate:"gt=0"`
	PollIntervalSeconds    int           `validate:"gt=0"`
	PollBatchSize          int           `validate:"gt=0"`
	RateLimit              int           `validate:"gt=0"`
	LockBackend            string        `validate:"oneof=local redis"`
	RedisAddr              string        `validate:"required_if=LockBackend redis"`
	RedisLockPrefix        string        `validate:"required"`
	LockTTL                time.Duration `validate:"gt=0"`
	LockWait               time.Duration `validate:"gt=0"`
	JWTSecret              string        `validate:"required,min=32"`
	TokenTTL               time.Duration `validate:"gt=0"`
	CORSAllowedOrigins     []string
	TrustProxy             bool
	LogLevel               string `validate:"oneof=debug info warn error"`
	LogFormat              string `validate:"oneof=json text"`
	LogFile                string
	LogMaxSizeMB           int `validate:"gte=0"`
	LogMaxBackups          int `validate:"gte=0"`
	LogMaxAgeDays          int `validate:"gte=0"`
	ShutdownTimeoutSeconds int `validate:"gt=0"`
}

var defaults = map[string]any{
	"APP_HOST":                   "127.0.0.1",
	"APP_PORT":                   "8080",
	"STORAGE_DRIVER":             "sqlite",
	"DATABASE_DSN":               "tasks.db",
	"TASK_WORKERS":               5,
	"TASK_QUEUE_SIZE":            100,
	"TASK_POLL_INTERVAL_SECONDS": 30,
	"TASK_POLL_BATCH_SIZE":       50,
	"RATE_LIMIT_PER_MINUTE":      60,
	"LOCK_BACKEND":               "local",
	"REDIS_HOST":                 "127.0.0.1",
	"REDIS_PORT":                 "6379",
	"REDIS_LOCK_PREFIX":          "task_lock",
	"LOCK_TTL_SECONDS":           10,
	"LOCK_WAIT_SECONDS":          5,
	"TOKEN_TTL_MINUTES":          1440,
	"CORS_ALLOWED_ORIGINS":       "*",
	"TRUST_PROXY":                false,
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"LOG_MAX_SIZE_MB":            100,
	"LOG_MAX_BACKUPS":            5,
	"LOG_MAX_AGE_DAYS":           30,
	"SHUTDOWN_TIMEOUT_SECONDS":   20,
}

// Load reads configuration from the environment and, when configFile is not empty,
// from that file. Environment variables win over file values.
func Load(configFile string) (Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", v.GetString("APP_HOST"), v.GetString("APP_PORT")),
		StorageDriver:          strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseDSN:            v.GetString("DATABASE_DSN"),
		Workers:                v.GetInt("TASK_WORKERS"),
		QueueSize:              v.GetInt("TASK_QUEUE_SIZE"),
		PollIntervalSeconds:    v.GetInt("TASK_POLL_INTERVAL_SECONDS"),
		PollBatchSize:          v.GetInt("TASK_POLL_BATCH_SIZE"),
		RateLimit:              v.GetInt("RATE_LIMIT_PER_MINUTE"),
		LockBackend:            strings.ToLower(v.GetString("LOCK_BACKEND")),
		RedisAddr:              fmt.Sprintf("%s:%s", v.GetString("REDIS_HOST"), v.GetString("REDIS_PORT")),
		RedisLockPrefix:        v.GetString("REDIS_LOCK_PREFIX"),
		LockTTL:                time.Duration(v.GetInt("LOCK_TTL_SECONDS")) * time.Second,
		LockWait:               time.Duration(v.GetInt("LOCK_WAIT_SECONDS")) * time.Second,
		JWTSecret:              v.GetString("JWT_SECRET"),
		TokenTTL:               time.Duration(v.GetInt("TOKEN_TTL_MINUTES")) * time.Minute,
		CORSAllowedOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		TrustProxy:             v.GetBool("TRUST_PROXY"),
		LogLevel:               strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:              strings.ToLower(v.GetString("LOG_FORMAT")),
		LogFile:                v.GetString("LOG_FILE"),
		LogMaxSizeMB:           v.GetInt("LOG_MAX_SIZE_MB"),
		LogMaxBackups:          v.GetInt("LOG_MAX_BACKUPS"),
		LogMaxAgeDays:          v.GetInt("LOG_MAX_AGE_DAYS"),
		ShutdownTimeoutSeconds: v.GetInt("SHUTDOWN_TIMEOUT_SECONDS"),
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
