package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const DEFAULT_DATABASE_NAME string = "conference-service"
const DEFAULT_ENV_FILE string = ".env"

// Config holds every runtime setting of the service. Empty MongoURI or
// RedisAddr select the in-memory store and cache.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR,default=:80"`

	MongoURI      string `env:"MONGODB_CONNSTRING"`
	MongoDatabase string `env:"MONGODB_DATABASE,default=conference-service"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	SigningKey string        `env:"SIGN,required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,default=8h"`

	// Account created or reset at start-up when both login and password are set.
	AdminLogin    string `env:"ADMIN_LOGIN"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminEmail    string `env:"ADMIN_EMAIL"`

	QueueWorkers     int           `env:"QUEUE_WORKERS,default=4"`
	QueueMaxAttempts int           `env:"QUEUE_MAX_ATTEMPTS,default=5"`
	QueueRetryDelay  time.Duration `env:"QUEUE_RETRY_DELAY,default=2s"`

	AnnouncementSchedule string `env:"ANNOUNCEMENT_SCHEDULE,default=@every 1h"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=50"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=100"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
}

// Load reads an optional env file and decodes the environment into a Config.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = DEFAULT_ENV_FILE
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("cannot read env file %v: %v", envFile, err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("cannot decode configuration: %v", err)
	}

	if cfg.QueueWorkers < 1 {
		return Config{}, fmt.Errorf("QUEUE_WORKERS must be at least 1, got %v", cfg.QueueWorkers)
	}
	if cfg.QueueMaxAttempts < 1 {
		return Config{}, fmt.Errorf("QUEUE_MAX_ATTEMPTS must be at least 1, got %v", cfg.QueueMaxAttempts)
	}

	return cfg, nil
}
