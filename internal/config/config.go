package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Provider exposes the settings the application modules read.
type Provider interface {
	GetAppEnv() string
	GetServerAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string
	GetSessionDir() string
	GetMessagesAPIURL() string
	GetMessagesAPILocalURL() string
	GetIPAPIURL() string
	GetHTTPTimeout() time.Duration
	GetIPCacheSize() int
	GetSentDelay() time.Duration
	GetLegacyCoordinateKey() bool
	GetAssetsDir() string
	GetTracingEnabled() bool
	GetZipkinURL() string
	GetServiceName() string
}

// Config holds all configuration for the application.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	ServerAddr string `envconfig:"SERVER_ADDR" default:":8080"`
	AppBaseURL string `envconfig:"APP_BASE_URL" default:"http://localhost:8080"`

	SessionSecret string `envconfig:"SESSION_SECRET"`
	// SessionDir holds server-side session files; empty means the OS temp dir.
	SessionDir string `envconfig:"SESSION_DIR"`

	MessagesAPIURL      string `envconfig:"MESSAGES_API_URL" default:"https://guestmap-api-production.up.railway.app/api/v1/messages"`
	MessagesAPILocalURL string `envconfig:"MESSAGES_API_LOCAL_URL" default:"http://localhost:5000/api/v1/messages"`
	IPAPIURL            string `envconfig:"IPAPI_URL" default:"https://ipapi.co"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	IPCacheSize int           `envconfig:"IP_CACHE_SIZE" default:"1024"`

	SentDelay           time.Duration `envconfig:"SENT_DELAY" default:"4s"`
	LegacyCoordinateKey bool          `envconfig:"LEGACY_COORDINATE_KEY" default:"false"`

	AssetsDir string `envconfig:"ASSETS_DIR"`

	TracingEnabled bool   `envconfig:"TRACING_ENABLED" default:"false"`
	ZipkinURL      string `envconfig:"ZIPKIN_URL" default:"http://localhost:9411/api/v2/spans"`
	ServiceName    string `envconfig:"SERVICE_NAME" default:"guestmap"`
}

// developmentSecret signs sessions when no secret is configured in development.
const developmentSecret = "guestmap-development-secret-change-me"

// New loads configuration from the .env file and environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// Load reads the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.SessionSecret == "" {
		if c.IsDevelopment() {
			c.SessionSecret = developmentSecret
		} else {
			errs = append(errs, errors.New("SESSION_SECRET is required outside development"))
		}
	}
	if c.MessagesAPIURL == "" || c.MessagesAPILocalURL == "" {
		errs = append(errs, errors.New("MESSAGES_API_URL and MESSAGES_API_LOCAL_URL must not be empty"))
	}
	if c.SentDelay < 0 {
		errs = append(errs, fmt.Errorf("SENT_DELAY must not be negative, got %s", c.SentDelay))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) GetAppEnv() string              { return c.AppEnv }
func (c *Config) GetServerAddr() string          { return c.ServerAddr }
func (c *Config) GetAppBaseURL() string          { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string       { return c.SessionSecret }
func (c *Config) GetSessionDir() string          { return c.SessionDir }
func (c *Config) GetMessagesAPIURL() string      { return c.MessagesAPIURL }
func (c *Config) GetMessagesAPILocalURL() string { return c.MessagesAPILocalURL }
func (c *Config) GetIPAPIURL() string            { return c.IPAPIURL }
func (c *Config) GetHTTPTimeout() time.Duration  { return c.HTTPTimeout }
func (c *Config) GetIPCacheSize() int            { return c.IPCacheSize }
func (c *Config) GetSentDelay() time.Duration    { return c.SentDelay }
func (c *Config) GetLegacyCoordinateKey() bool   { return c.LegacyCoordinateKey }
func (c *Config) GetAssetsDir() string           { return c.AssetsDir }
func (c *Config) GetTracingEnabled() bool        { return c.TracingEnabled }
func (c *Config) GetZipkinURL() string           { return c.ZipkinURL }
func (c *Config) GetServiceName() string         { return c.ServiceName }
