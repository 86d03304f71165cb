// Package config loads the service configuration from a YAML file, a .env
// file and REVIEWSENSE_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/reviewsense"
)

// Embedder kinds.
const (
	EmbedderLexical = "lexical"
	EmbedderRemote  = "remote"
)

// Server configures the HTTP listener.
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// Model configures the classifier artifact and the predictor around it.
type Model struct {
	Path             string `yaml:"path"`
	EmptyInput       string `yaml:"empty_input"` // error | neutral
	SkipEncoderCheck bool   `yaml:"skip_encoder_check"`
	Serialize        bool   `yaml:"serialize"`
}

// Embedder selects and configures the text encoder.
type Embedder struct {
	Kind    string        `yaml:"kind"` // lexical | remote
	URL     string        `yaml:"url"`
	Model   string        `yaml:"model"`
	Token   string        `yaml:"token"`
	Dim     int           `yaml:"dim"`
	Timeout time.Duration `yaml:"timeout"`
	Lexicon string        `yaml:"lexicon"` // optional JSON lexicon merged into the built-in one
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// UI toggles the interactive page.
type UI struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the application configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Model    Model    `yaml:"model"`
	Embedder Embedder `yaml:"embedder"`
	Log      Log      `yaml:"log"`
	UI       UI       `yaml:"ui"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Model: Model{
			Path:       "model/hybrid_sentiment.gob",
			EmptyInput: string(reviewsense.EmptyError),
		},
		Embedder: Embedder{
			Kind:    EmbedderLexical,
			Model:   reviewsense.DefaultRemoteModel,
			Dim:     reviewsense.DefaultDim,
			Timeout: 30 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		UI: UI{Enabled: true},
	}
}

// Load builds the configuration: defaults, overlaid by the YAML file at path
// (skipped when path is empty), overlaid by environment variables. A .env file
// in the working directory is read first; it never replaces variables that
// are already set.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides fields with REVIEWSENSE_* variables that are set.
func (c *Config) applyEnv() error {
	if host, ok := os.LookupEnv("REVIEWSENSE_HOST"); ok {
		c.Server.Host = host
	}
	if port, ok := os.LookupEnv("REVIEWSENSE_PORT"); ok {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("REVIEWSENSE_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if path, ok := os.LookupEnv("REVIEWSENSE_MODEL_PATH"); ok {
		c.Model.Path = path
	}
	if kind, ok := os.LookupEnv("REVIEWSENSE_EMBEDDER"); ok {
		c.Embedder.Kind = kind
	}
	if url, ok := os.LookupEnv("REVIEWSENSE_EMBEDDER_URL"); ok {
		c.Embedder.URL = url
	}
	if token, ok := os.LookupEnv("REVIEWSENSE_EMBEDDER_TOKEN"); ok {
		c.Embedder.Token = token
	}
	if level, ok := os.LookupEnv("REVIEWSENSE_LOG_LEVEL"); ok {
		c.Log.Level = level
	}
	if format, ok := os.LookupEnv("REVIEWSENSE_LOG_FORMAT"); ok {
		c.Log.Format = format
	}
	if ui, ok := os.LookupEnv("REVIEWSENSE_UI"); ok {
		enabled, err := strconv.ParseBool(ui)
		if err != nil {
			return fmt.Errorf("REVIEWSENSE_UI: %w", err)
		}
		c.UI.Enabled = enabled
	}
	return nil
}

// Validate rejects values the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Model.Path == "" {
		return errors.New("model.path is required")
	}
	switch reviewsense.EmptyInputPolicy(c.Model.EmptyInput) {
	case reviewsense.EmptyError, reviewsense.EmptyNeutral:
	default:
		return fmt.Errorf("model.empty_input must be error or neutral, got %q", c.Model.EmptyInput)
	}
	switch c.Embedder.Kind {
	case EmbedderLexical:
	case EmbedderRemote:
		if c.Embedder.URL == "" {
			return errors.New("embedder.url is required for the remote embedder")
		}
		if c.Embedder.Model == "" {
			return errors.New("embedder.model is required for the remote embedder")
		}
	default:
		return fmt.Errorf("embedder.kind must be lexical or remote, got %q", c.Embedder.Kind)
	}
	if c.Embedder.Dim <= 0 {
		return fmt.Errorf("embedder.dim must be positive, got %d", c.Embedder.Dim)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Addr is the listen address, host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
