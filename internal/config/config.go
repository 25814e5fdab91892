// Package config provides application configuration management with support for
// TOML files, environment variable overrides, and configuration overlays.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/document-center/internal/browser"
	"github.com/JaimeStill/document-center/internal/documents"
	"github.com/JaimeStill/document-center/internal/drive"
	"github.com/JaimeStill/document-center/internal/secrets"
	"github.com/JaimeStill/document-center/internal/storage"
	"github.com/JaimeStill/document-center/pkg/database"
	"github.com/JaimeStill/document-center/pkg/logging"
	"github.com/JaimeStill/document-center/pkg/pagination"
	"github.com/pelletier/go-toml/v2"
)

const (
	// BaseConfigFile is the primary configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern is the file name pattern for environment-specific overlays.
	OverlayConfigPattern = "config.%s.toml"

	// EnvServiceEnv specifies the environment name for configuration overlays.
	EnvServiceEnv = "SERVICE_ENV"

	// EnvServiceShutdownTimeout overrides the service shutdown timeout.
	EnvServiceShutdownTimeout = "SERVICE_SHUTDOWN_TIMEOUT"
)

var databaseEnv = &database.Env{
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	SSLMode:         "DATABASE_SSL_MODE",
	ApplicationName: "DATABASE_APPLICATION_NAME",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
}

var loggingEnv = &logging.Env{
	Level:  "LOGGING_LEVEL",
	Format: "LOGGING_FORMAT",
}

var paginationEnv = &pagination.Env{
	PageSize: "PAGINATION_PAGE_SIZE",
}

var cacheEnv = &storage.Env{
	BasePath:     "CACHE_BASE_PATH",
	MaxEntrySize: "CACHE_MAX_ENTRY_SIZE",
}

var driveEnv = &drive.Env{
	SecretName: "DRIVE_SECRET_NAME",
	TokenURL:   "DRIVE_TOKEN_URL",
	Endpoint:   "DRIVE_ENDPOINT",
	ChunkSize:  "DRIVE_CHUNK_SIZE",
}

var browserEnv = &browser.Env{
	UserAgent: "BROWSER_USER_AGENT",
	Timeout:   "BROWSER_TIMEOUT",
	RobotsTTL: "BROWSER_ROBOTS_TTL",
}

var secretsEnv = &secrets.Env{
	Dir:       "SECRETS_DIR",
	EnvPrefix: "SECRETS_ENV_PREFIX",
}

var documentsEnv = &documents.Env{
	TablePrefix:     "DOCUMENTS_TABLE_PREFIX",
	DefaultCategory: "DOCUMENTS_DEFAULT_CATEGORY",
}

// Config represents the root service configuration.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Logging         logging.Config    `toml:"logging"`
	Pagination      pagination.Config `toml:"pagination"`
	Drive           drive.Config      `toml:"drive"`
	Browser         browser.Config    `toml:"browser"`
	Cache           storage.Config    `toml:"cache"`
	Secrets         secrets.Config    `toml:"secrets"`
	Documents       documents.Config  `toml:"documents"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
}

// ShutdownTimeoutDuration parses and returns the shutdown timeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads and parses the base configuration file and applies any environment-specific overlay.
func Load() (*Config, error) {
	cfg, err := load(BaseConfigFile)
	if err != nil {
		return nil, err
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Logging.Finalize(loggingEnv); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Drive.Finalize(driveEnv); err != nil {
		return fmt.Errorf("drive: %w", err)
	}
	if err := c.Browser.Finalize(browserEnv); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Secrets.Finalize(secretsEnv); err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	if err := c.Documents.Finalize(documentsEnv); err != nil {
		return fmt.Errorf("documents: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Logging.Merge(&overlay.Logging)
	c.Pagination.Merge(&overlay.Pagination)
	c.Drive.Merge(&overlay.Drive)
	c.Browser.Merge(&overlay.Browser)
	c.Cache.Merge(&overlay.Cache)
	c.Secrets.Merge(&overlay.Secrets)
	c.Documents.Merge(&overlay.Documents)
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvServiceShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvServiceEnv); env != "" {
		overlayPath := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(overlayPath); err == nil {
			return overlayPath
		}
	}
	return ""
}
