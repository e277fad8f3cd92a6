// Package config loads runtime settings: built-in defaults, then an optional
// YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"resume-builder/internal/capture"
	"resume-builder/internal/domain"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Render    RenderConfig    `yaml:"render"`
	Database  DatabaseConfig  `yaml:"database"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Access    AccessConfig    `yaml:"access"`
	Discord   DiscordConfig   `yaml:"discord"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port" validate:"required,numeric"`
	// PublicURL is how the browser reaches this server's print route.
	PublicURL string `yaml:"public_url" validate:"omitempty,url"`
}

type RenderConfig struct {
	ChromePath      string        `yaml:"chrome_path"`
	Strategy        string        `yaml:"strategy" validate:"oneof=content route"`
	DefaultTemplate string        `yaml:"default_template" validate:"required"`
	ReadyTimeout    time.Duration `yaml:"ready_timeout" validate:"gt=0"`
	PollInterval    time.Duration `yaml:"poll_interval" validate:"gt=0"`
	SettleDelay     time.Duration `yaml:"settle_delay" validate:"gte=0"`
	LaunchTimeout   time.Duration `yaml:"launch_timeout" validate:"gt=0"`
	ImageTimeout    time.Duration `yaml:"image_timeout" validate:"gt=0"`
	CaptureTimeout  time.Duration `yaml:"capture_timeout" validate:"gt=0"`
	FontsDir        string        `yaml:"fonts_dir"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type ArtifactsConfig struct {
	Dir      string `yaml:"dir"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
	Region   string `yaml:"region"`
}

type AccessConfig struct {
	Secret string        `yaml:"secret" validate:"omitempty,min=16"`
	TTL    time.Duration `yaml:"ttl" validate:"gte=0"`
}

type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "3000"},
		Render: RenderConfig{
			Strategy:        string(domain.InjectContent),
			DefaultTemplate: string(domain.TemplatePrimary),
			ReadyTimeout:    capture.DefaultReadyTimeout,
			PollInterval:    capture.DefaultPollInterval,
			SettleDelay:     capture.DefaultSettleDelay,
			LaunchTimeout:   capture.DefaultLaunchTimeout,
			ImageTimeout:    capture.DefaultImageTimeout,
			CaptureTimeout:  capture.DefaultCaptureTimeout,
		},
		Access: AccessConfig{TTL: 24 * time.Hour},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// LoadDotEnv loads .env style files into the environment. Missing files are
// ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
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

func (c *Config) applyEnv() error {
	str := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(dst *time.Duration, key string) error {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str(&c.Server.Port, "PORT")
	str(&c.Server.PublicURL, "PUBLIC_URL")
	str(&c.Render.ChromePath, "CHROME_PATH")
	str(&c.Render.Strategy, "RENDER_STRATEGY")
	str(&c.Render.DefaultTemplate, "RENDER_DEFAULT_TEMPLATE")
	str(&c.Render.FontsDir, "FONTS_DIR")
	str(&c.Database.URL, "DATABASE_URL")
	str(&c.Artifacts.Dir, "ARTIFACT_DIR")
	str(&c.Artifacts.S3Bucket, "ARTIFACT_S3_BUCKET")
	str(&c.Artifacts.S3Prefix, "ARTIFACT_S3_PREFIX")
	str(&c.Artifacts.Region, "AWS_REGION")
	str(&c.Access.Secret, "ACCESS_KEY_SECRET")
	str(&c.Discord.Token, "DISCORD_BOT_TOKEN")
	str(&c.Discord.ChannelID, "DISCORD_CHANNEL_ID")
	str(&c.Log.Level, "LOG_LEVEL")
	str(&c.Log.Format, "LOG_FORMAT")
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)

	for key, dst := range map[string]*time.Duration{
		"RENDER_READY_TIMEOUT":   &c.Render.ReadyTimeout,
		"RENDER_POLL_INTERVAL":   &c.Render.PollInterval,
		"RENDER_SETTLE_DELAY":    &c.Render.SettleDelay,
		"RENDER_LAUNCH_TIMEOUT":  &c.Render.LaunchTimeout,
		"RENDER_IMAGE_TIMEOUT":   &c.Render.ImageTimeout,
		"RENDER_CAPTURE_TIMEOUT": &c.Render.CaptureTimeout,
		"ACCESS_KEY_TTL":         &c.Access.TTL,
	} {
		if err := dur(dst, key); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks field constraints and the rules that span fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := domain.ParseTemplate(c.Render.DefaultTemplate); err != nil {
		return fmt.Errorf("config: default template: %w", err)
	}
	if c.Render.Strategy == string(domain.InjectRoute) && c.Server.PublicURL == "" {
		return errors.New("config: route strategy requires a public url")
	}
	if c.Discord.ChannelID != "" && c.Discord.Token == "" {
		return errors.New("config: discord channel set without a bot token")
	}
	return nil
}

// DefaultTemplate returns the parsed default template. Valid after Load.
func (c *Config) DefaultTemplate() domain.TemplateKind {
	k, err := domain.ParseTemplate(c.Render.DefaultTemplate)
	if err != nil {
		return domain.TemplatePrimary
	}
	return k
}

// CaptureOptions maps render settings onto controller options.
func (c *Config) CaptureOptions() []capture.Option {
	return []capture.Option{
		capture.WithReadyTimeout(c.Render.ReadyTimeout),
		capture.WithPollInterval(c.Render.PollInterval),
		capture.WithSettleDelay(c.Render.SettleDelay),
		capture.WithLaunchTimeout(c.Render.LaunchTimeout),
		capture.WithImageTimeout(c.Render.ImageTimeout),
		capture.WithCaptureTimeout(c.Render.CaptureTimeout),
	}
}
