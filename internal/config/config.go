package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration that cannot run the site.
var ErrInvalid = errors.New("invalid configuration")

const (
	FallbackBlocking    = "blocking"
	FallbackPlaceholder = "placeholder"
)

type Config struct {
	CMS      CMSConfig      `yaml:"cms"`
	Site     SiteConfig     `yaml:"site"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	LogLevel string         `yaml:"log_level"`
}

type CMSConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	AccessToken string        `yaml:"access_token"`
	Timeout     time.Duration `yaml:"timeout"`
	Retry       RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type SiteConfig struct {
	Title            string        `yaml:"title"`
	OutputDir        string        `yaml:"output_dir"`
	Locale           string        `yaml:"locale"`
	Timezone         string        `yaml:"timezone"`
	Revalidate       time.Duration `yaml:"revalidate"`
	Fallback         string        `yaml:"fallback"`
	BuildConcurrency int           `yaml:"build_concurrency"`
	RebuildInterval  time.Duration `yaml:"rebuild_interval"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

// Enabled reports whether page events should be published.
func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// Enabled reports whether the post archive is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse expands environment references in data and decodes it.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.CMS.Timeout == 0 {
		c.CMS.Timeout = 30 * time.Second
	}
	if c.CMS.Retry.MaxAttempts == 0 {
		c.CMS.Retry.MaxAttempts = 3
	}
	if c.CMS.Retry.InitialBackoff == 0 {
		c.CMS.Retry.InitialBackoff = 1 * time.Second
	}
	if c.CMS.Retry.MaxBackoff == 0 {
		c.CMS.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Site.Title == "" {
		c.Site.Title = "spacetraveling"
	}
	if c.Site.OutputDir == "" {
		c.Site.OutputDir = "public"
	}
	if c.Site.Locale == "" {
		c.Site.Locale = "pt-BR"
	}
	if c.Site.Timezone == "" {
		c.Site.Timezone = "UTC"
	}
	if c.Site.Revalidate == 0 {
		c.Site.Revalidate = 30 * time.Minute
	}
	if c.Site.Fallback == "" {
		c.Site.Fallback = FallbackBlocking
	}
	if c.Site.BuildConcurrency == 0 {
		c.Site.BuildConcurrency = 4
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Enabled() {
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	}
	if c.RabbitMQ.Enabled() {
		if c.RabbitMQ.Exchange == "" {
			c.RabbitMQ.Exchange = "spacetraveling"
		}
		if c.RabbitMQ.RoutingKey == "" {
			c.RabbitMQ.RoutingKey = "pages"
		}
		if c.RabbitMQ.QueueName == "" {
			c.RabbitMQ.QueueName = "page_events"
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects configuration the CMS client or renderer cannot start with.
func (c *Config) Validate() error {
	if c.CMS.Endpoint == "" {
		return fmt.Errorf("%w: cms.endpoint is required", ErrInvalid)
	}
	u, err := url.Parse(c.CMS.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: cms.endpoint %q is not an absolute http(s) URL", ErrInvalid, c.CMS.Endpoint)
	}
	if c.CMS.AccessToken == "" {
		return fmt.Errorf("%w: cms.access_token is required", ErrInvalid)
	}
	if _, err := language.Parse(c.Site.Locale); err != nil {
		return fmt.Errorf("%w: site.locale %q: %v", ErrInvalid, c.Site.Locale, err)
	}
	if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
		return fmt.Errorf("%w: site.timezone %q: %v", ErrInvalid, c.Site.Timezone, err)
	}
	if c.Site.Fallback != FallbackBlocking && c.Site.Fallback != FallbackPlaceholder {
		return fmt.Errorf("%w: site.fallback must be %q or %q", ErrInvalid, FallbackBlocking, FallbackPlaceholder)
	}
	if c.Site.BuildConcurrency < 1 {
		return fmt.Errorf("%w: site.build_concurrency must be positive", ErrInvalid)
	}
	return nil
}
