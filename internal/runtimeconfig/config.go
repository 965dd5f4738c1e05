package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrStorageProviderUnknown  = errors.New("cms config: storage provider is invalid")
	ErrStorageDSNRequired      = errors.New("cms config: storage dsn is required for sql providers")
	ErrLoggingProviderRequired = errors.New("cms config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("cms config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("cms config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("cms config: logging format is invalid")
	ErrVersionRetentionInvalid = errors.New("cms config: version retention must be zero or positive")
	ErrDepthInvalid            = errors.New("cms config: default depth must be between zero and max depth")
	ErrServerAddrRequired      = errors.New("cms config: server address is required when the http feature is enabled")
	ErrConfigFileUnreadable    = errors.New("cms config: config file unreadable")
)

// Storage providers understood by the DI container.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// DefaultMaxPerDoc matches the version retention applied when a collection
// enables versions without an explicit limit.
const DefaultMaxPerDoc = 100

// Config aggregates runtime settings that are independent of the declared
// collections and globals.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Features Features       `yaml:"features"`
	Versions VersionsConfig `yaml:"versions"`
	Depth    DepthConfig    `yaml:"depth"`
	GraphQL  GraphQLConfig  `yaml:"graphql"`
	Server   ServerConfig   `yaml:"server"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Provider     string `yaml:"provider"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// CacheConfig toggles go-repository-cache in front of bun repositories.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// LoggingConfig captures provider specific logging options.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// Features toggles optional modules.
type Features struct {
	Logger   bool `yaml:"logger"`
	Activity bool `yaml:"activity"`
	HTTP     bool `yaml:"http"`
}

// VersionsConfig holds the fallback retention for versioned types.
type VersionsConfig struct {
	MaxPerDoc int `yaml:"max_per_doc"`
}

// DepthConfig bounds relationship population.
type DepthConfig struct {
	Default int `yaml:"default"`
	Max     int `yaml:"max"`
}

// GraphQLConfig controls schema generation.
type GraphQLConfig struct {
	SchemaOutputFile string `yaml:"schema_output_file"`
	Disable          bool   `yaml:"disable"`
}

// ServerConfig configures the optional REST adapter.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`
}

// DefaultConfig returns an in-memory setup with console logging.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: StorageMemory,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
		Features: Features{
			Logger:   true,
			Activity: true,
		},
		Versions: VersionsConfig{
			MaxPerDoc: DefaultMaxPerDoc,
		},
		Depth: DepthConfig{
			Default: 2,
			Max:     10,
		},
		Server: ServerConfig{
			Addr:     ":3000",
			BasePath: "/api",
		},
	}
}

// LoadFile overlays the YAML document at path on top of DefaultConfig.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfigFileUnreadable, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfigFileUnreadable, err)
	}
	return cfg, cfg.Validate()
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	switch provider := normalize(cfg.Storage.Provider); provider {
	case "", StorageMemory:
	case StorageSQLite, StoragePostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if cfg.Versions.MaxPerDoc < 0 {
		return ErrVersionRetentionInvalid
	}
	if cfg.Depth.Default < 0 || (cfg.Depth.Max > 0 && cfg.Depth.Default > cfg.Depth.Max) {
		return ErrDepthInvalid
	}
	if cfg.Features.HTTP && strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// StorageProvider returns the normalized provider, defaulting to memory.
func (cfg Config) StorageProvider() string {
	if provider := normalize(cfg.Storage.Provider); provider != "" {
		return provider
	}
	return StorageMemory
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
