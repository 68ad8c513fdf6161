// Package config loads runtime settings from .env files, the process
// environment and explicit overrides. Every variable carries the CV_ prefix.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultEnvFile = ".env"
	envPrefix      = "CV_"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Content  ContentConfig  `envPrefix:"CONTENT_"`
	Render   RenderConfig   `envPrefix:"RENDER_"`
	Feedback FeedbackConfig `envPrefix:"FEEDBACK_"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DevMode  bool   `env:"DEV"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	BaseURL         string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	TemplatesDir    string        `env:"TEMPLATES_DIR" envDefault:"templates"`
	PublicDir       string        `env:"PUBLIC_DIR" envDefault:"public"`
	SecureCookies   bool          `env:"SECURE_COOKIES"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ContentConfig selects where documents come from and how they are laid out.
type ContentConfig struct {
	Dir       string        `env:"DIR" envDefault:"content"`
	RemoteURL string        `env:"REMOTE_URL"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"5s"`
	Strategy  string        `env:"STRATEGY" envDefault:"per_language"`
	Watch     bool          `env:"WATCH"`
	StatusTTL time.Duration `env:"STATUS_TTL" envDefault:"30s"`
}

// RenderConfig tunes section rendering.
type RenderConfig struct {
	SkillStyle string `env:"SKILL_STYLE" envDefault:"stars"`
}

// FeedbackConfig limits feedback form submissions per client.
type FeedbackConfig struct {
	RateLimit  int           `env:"RATE_LIMIT" envDefault:"5"`
	RateWindow time.Duration `env:"RATE_WINDOW" envDefault:"10m"`
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path. An empty path skips the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over the system environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// EnvironmentValues returns the effective environment with precedence
// dotenv < OS env < explicit map.
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	values := map[string]string{}
	if options.envFile != "" {
		dot, err := godotenv.Read(options.envFile)
		switch {
		case err == nil:
			for k, v := range dot {
				values[k] = v
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", options.envFile, err)
		}
	}
	if options.useSystemEnv {
		for k, v := range env.ToMap(os.Environ()) {
			values[k] = v
		}
	}
	for k, v := range options.envMap {
		values[k] = v
	}
	return values, nil
}

// Load assembles and validates the configuration.
func Load(opts ...Option) (Config, error) {
	values, err := EnvironmentValues(opts...)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix, Environment: values}); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.normalize()
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WatchContent reports whether serve should watch the local content
// directory. Dev mode implies watching.
func (c Config) WatchContent() bool {
	return (c.Content.Watch || c.DevMode) && strings.TrimSpace(c.Content.Dir) != ""
}

func (c *Config) normalize() {
	c.Content.Strategy = strings.ToLower(strings.TrimSpace(c.Content.Strategy))
	c.Render.SkillStyle = strings.ToLower(strings.TrimSpace(c.Render.SkillStyle))
	c.Content.RemoteURL = strings.TrimRight(strings.TrimSpace(c.Content.RemoteURL), "/")
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
}

func validate(cfg Config) error {
	var fields []string
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		fields = append(fields, "Server.Addr")
	}
	if !isHTTPURL(cfg.Server.BaseURL) {
		fields = append(fields, "Server.BaseURL")
	}
	if cfg.Server.ReadTimeout <= 0 {
		fields = append(fields, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		fields = append(fields, "Server.WriteTimeout")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		fields = append(fields, "Server.ShutdownTimeout")
	}
	if strings.TrimSpace(cfg.Content.Dir) == "" && cfg.Content.RemoteURL == "" {
		fields = append(fields, "Content.Dir")
	}
	if cfg.Content.RemoteURL != "" && !isHTTPURL(cfg.Content.RemoteURL) {
		fields = append(fields, "Content.RemoteURL")
	}
	if cfg.Content.Timeout <= 0 {
		fields = append(fields, "Content.Timeout")
	}
	switch cfg.Content.Strategy {
	case "per_language", "language_keyed":
	default:
		fields = append(fields, "Content.Strategy")
	}
	switch cfg.Render.SkillStyle {
	case "stars", "percent":
	default:
		fields = append(fields, "Render.SkillStyle")
	}
	if cfg.Feedback.RateLimit < 0 {
		fields = append(fields, "Feedback.RateLimit")
	}
	if cfg.Feedback.RateLimit > 0 && cfg.Feedback.RateWindow <= 0 {
		fields = append(fields, "Feedback.RateWindow")
	}
	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
