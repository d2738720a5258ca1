/*
Package config loads filinglens configuration from defaults, an optional YAML
file and FILINGLENS_* environment variables, in that order of precedence.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const EnvPrefix = "FILINGLENS"

type Config struct {
	Source     SourceConfig     `yaml:"source" envconfig:"SOURCE"`
	Annotation AnnotationConfig `yaml:"annotation" envconfig:"ANNOTATION"`
	History    HistoryConfig    `yaml:"history" envconfig:"HISTORY"`
	Graph      GraphConfig      `yaml:"graph" envconfig:"GRAPH"`
	SMTP       SMTPConfig       `yaml:"smtp" envconfig:"SMTP"`
	Postgres   PostgresConfig   `yaml:"postgres" envconfig:"POSTGRES"`
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

type SourceConfig struct {
	Kind         string `yaml:"kind" envconfig:"KIND" validate:"oneof=local gcs"`
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR" validate:"required_if=Kind local"`
	Bucket       string `yaml:"bucket" envconfig:"BUCKET" validate:"required_if=Kind gcs"`
	Prefix       string `yaml:"prefix" envconfig:"PREFIX"`
	FilingType   string `yaml:"filing_type" envconfig:"FILING_TYPE" validate:"required"`
	DocumentFile string `yaml:"document_file" envconfig:"DOCUMENT_FILE"`
	Cleaner      string `yaml:"cleaner" envconfig:"CLEANER" validate:"oneof=naive html"`
}

type AnnotationConfig struct {
	Engine        string        `yaml:"engine" envconfig:"ENGINE" validate:"oneof=gemini dir"`
	APIKey        string        `yaml:"api_key" envconfig:"API_KEY" validate:"required_if=Engine gemini"`
	Model         string        `yaml:"model" envconfig:"MODEL"`
	Dir           string        `yaml:"dir" envconfig:"DIR" validate:"required_if=Engine dir"`
	Concurrency   int           `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"min=1"`
	Rate          float64       `yaml:"rate" envconfig:"RATE" validate:"gte=0"`
	Burst         int           `yaml:"burst" envconfig:"BURST" validate:"min=1"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gte=0"`
	MaxInputChars int           `yaml:"max_input_chars" envconfig:"MAX_INPUT_CHARS" validate:"gte=0"`
}

type HistoryConfig struct {
	Backend       string        `yaml:"backend" envconfig:"BACKEND" validate:"oneof=none file redis"`
	FilePath      string        `yaml:"file_path" envconfig:"FILE_PATH"`
	RedisAddr     string        `yaml:"redis_addr" envconfig:"REDIS_ADDR" validate:"required_if=Backend redis"`
	RedisPassword string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" envconfig:"REDIS_DB" validate:"gte=0"`
	TTL           time.Duration `yaml:"ttl" envconfig:"TTL" validate:"gte=0"`
}

type GraphConfig struct {
	Seed       uint64  `yaml:"seed" envconfig:"SEED"`
	K          float64 `yaml:"k" envconfig:"K" validate:"gt=0"`
	Iterations int     `yaml:"iterations" envconfig:"ITERATIONS" validate:"min=1"`
}

type SMTPConfig struct {
	Host      string `yaml:"host" envconfig:"HOST"`
	Port      int    `yaml:"port" envconfig:"PORT" validate:"gte=0,lte=65535"`
	Username  string `yaml:"username" envconfig:"USERNAME"`
	Password  string `yaml:"password" envconfig:"PASSWORD"`
	Sender    string `yaml:"sender" envconfig:"SENDER" validate:"omitempty,email"`
	Recipient string `yaml:"recipient" envconfig:"RECIPIENT" validate:"omitempty,email"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port != 0 && c.Sender != "" && c.Recipient != ""
}

type PostgresConfig struct {
	DSN string `yaml:"dsn" envconfig:"DSN"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output stdout"`
}

type TelemetryConfig struct {
	Tracing string `yaml:"tracing" envconfig:"TRACING" validate:"oneof=none stdout"`
}

func Default() Config {
	return Config{
		Source: SourceConfig{
			Kind:         "local",
			BaseDir:      "sec-edgar-filings",
			FilingType:   "10-K",
			DocumentFile: "full-submission.txt",
			Cleaner:      "naive",
		},
		Annotation: AnnotationConfig{
			Engine:      "gemini",
			Model:       "gemini-2.5-flash",
			Concurrency: 1,
			Burst:       1,
			Timeout:     2 * time.Minute,
		},
		History: HistoryConfig{
			Backend: "none",
			TTL:     30 * 24 * time.Hour,
		},
		Graph: GraphConfig{
			Seed:       42,
			K:          0.9,
			Iterations: 50,
		},
		SMTP: SMTPConfig{Port: 587},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    10 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging:   LoggingConfig{Level: "info", Output: "stdout"},
		Telemetry: TelemetryConfig{Tracing: "none"},
	}
}

// Load builds the configuration. A missing file at path is not an error; an
// empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	return v.Struct(c)
}
