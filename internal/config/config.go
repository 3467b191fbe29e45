package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"valentine-quiz-service/internal/domain"
)

// Storage backends for the durable quiz state.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Quiz content sources.
const (
	SourceConfig   = "config"
	SourcePostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Quiz     QuizConfig     `yaml:"quiz"`
	Reveal   RevealConfig   `yaml:"reveal"`
}

type ServerConfig struct {
	Port            string `yaml:"port" env:"PORT"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT" validate:"omitempty,oneof=text json"`
}

type StorageConfig struct {
	Backend    string `yaml:"backend" env:"STORAGE_BACKEND" validate:"oneof=sqlite redis postgres memory"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	Namespace  string `yaml:"namespace" env:"STORAGE_NAMESPACE"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"POSTGRES_URL"`
}

type QuizConfig struct {
	ID        string            `yaml:"id" validate:"required"`
	Source    string            `yaml:"source" env:"QUIZ_SOURCE" validate:"oneof=config postgres"`
	CacheTTL  string            `yaml:"cache_ttl"`
	Lockout   string            `yaml:"lockout"`
	Taunts    []string          `yaml:"taunts"`
	Questions []domain.Question `yaml:"questions"`
}

type RevealConfig struct {
	Target string      `yaml:"target" env:"REVEAL_TARGET"`
	Gift   domain.Gift `yaml:"gift"`
}

// Load reads YAML config from path, applies environment overrides and defaults,
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/quiz.db"
	}
	if c.Storage.Namespace == "" {
		c.Storage.Namespace = c.Quiz.ID
	}
	if c.Quiz.Source == "" {
		c.Quiz.Source = SourceConfig
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

var validate = validator.New()

// Validate checks backend selection, the reveal target and, for config-sourced
// quizzes, the quiz content itself.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.RevealTarget(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Quiz.Source == SourceConfig {
		if err := c.QuizContent().Validate(); err != nil {
			return err
		}
	}
	needsRedis := c.Storage.Backend == BackendRedis
	if needsRedis && c.Redis.Addr == "" {
		return fmt.Errorf("invalid config: redis.addr is required for the redis backend")
	}
	needsPostgres := c.Storage.Backend == BackendPostgres || c.Quiz.Source == SourcePostgres
	if needsPostgres && c.Postgres.URL == "" {
		return fmt.Errorf("invalid config: postgres.url is required")
	}
	return nil
}

// QuizContent returns the quiz defined inline in the config.
func (c Config) QuizContent() domain.Quiz {
	return domain.Quiz{ID: c.Quiz.ID, Questions: c.Quiz.Questions}
}

// RevealTarget parses reveal.target (RFC 3339). An empty target means the gate is open.
func (c Config) RevealTarget() (time.Time, error) {
	if c.Reveal.Target == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.Reveal.Target)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reveal.target: %w", err)
	}
	return t, nil
}

// LogLevel parses log.level (debug, info, warn, error).
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return level, fmt.Errorf("invalid log.level: %w", err)
	}
	return level, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
