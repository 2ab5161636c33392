package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 3000
	defaultEnv        = "development"
	defaultMongoURL   = "mongodb://localhost:27017"
	defaultMongoName  = "blogDB"
	defaultRedisURL   = "redis://localhost:6379/0"
	defaultSessionTTL = 30 * 24 * time.Hour
	defaultCookieName = "pd_session"

	// StorageGridFS streams blobs through the Mongo GridFS bucket.
	StorageGridFS = "gridfs"
	// StorageS3 stores blobs in an S3-compatible bucket.
	StorageS3 = "s3"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	PublicBaseURL  string         `yaml:"public_base_url"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	Mongo          MongoConfig    `yaml:"mongo"`
	RedisURL       string         `yaml:"redis_url"`
	Session        SessionConfig  `yaml:"session"`
	OAuth          OAuthConfig    `yaml:"oauth"`
	Storage        StorageConfig  `yaml:"storage"`
	Template       TemplateConfig `yaml:"templates"`
}

type MongoConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type SessionConfig struct {
	TTL          time.Duration `yaml:"ttl"`
	CookieName   string        `yaml:"cookie_name"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

type OAuthConfig struct {
	Google   OAuthProviderConfig `yaml:"google"`
	Facebook OAuthProviderConfig `yaml:"facebook"`
}

type OAuthProviderConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// Enabled reports whether the provider has credentials configured.
func (c OAuthProviderConfig) Enabled() bool { return c.ClientID != "" && c.ClientSecret != "" }

type StorageConfig struct {
	Driver string    `yaml:"driver"` // gridfs | s3
	Bucket string    `yaml:"bucket"`
	S3     S3Options `yaml:"s3"`
}

type S3Options struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type TemplateConfig struct {
	Glob string `yaml:"glob"`
}

func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	return Parse(content, path)
}

// Parse decodes YAML config bytes, applying defaults and validation.
func Parse(content []byte, path string) (*AppConfig, error) {
	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Mongo.URL == "" || cfg.Mongo.Name == "" {
		return nil, fmt.Errorf("mongo.url and mongo.name are required in %q", path)
	}
	switch cfg.Storage.Driver {
	case StorageGridFS:
	case StorageS3:
		s3 := cfg.Storage.S3
		if s3.Region == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			return nil, fmt.Errorf("storage.s3 requires region, access_key_id, and secret_access_key in %q", path)
		}
	default:
		return nil, fmt.Errorf("invalid storage.driver %q in %q, expected %q or %q",
			cfg.Storage.Driver, path, StorageGridFS, StorageS3)
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = defaultSessionTTL
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = defaultCookieName
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Mongo: MongoConfig{
			URL:  defaultMongoURL,
			Name: defaultMongoName,
		},
		RedisURL: defaultRedisURL,
		Session: SessionConfig{
			TTL:        defaultSessionTTL,
			CookieName: defaultCookieName,
		},
		Storage: StorageConfig{
			Driver: StorageGridFS,
			Bucket: "uploads",
		},
		Template: TemplateConfig{
			Glob: "web/templates/*.html",
		},
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }
