package cms

import (
	"context"
	"io"

	"github.com/goliatone/go-cms-community/internal/runtimeconfig"
	"github.com/goliatone/go-cms-community/schema"
)

var (
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrVersionRetentionInvalid = runtimeconfig.ErrVersionRetentionInvalid
	ErrDepthInvalid            = runtimeconfig.ErrDepthInvalid
	ErrServerAddrRequired      = runtimeconfig.ErrServerAddrRequired
)

type (
	RuntimeConfig  = runtimeconfig.Config
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
	VersionsConfig = runtimeconfig.VersionsConfig
	DepthConfig    = runtimeconfig.DepthConfig
	GraphQLConfig  = runtimeconfig.GraphQLConfig
	ServerConfig   = runtimeconfig.ServerConfig
)

// InitFunc runs once Init has migrated storage and written the GraphQL schema.
type InitFunc func(ctx context.Context, m *Module) error

// Config is the root declaration of a CMS: runtime settings plus the content
// model and startup hook.
type Config struct {
	runtimeconfig.Config `yaml:",inline"`

	Collections []schema.Collection `yaml:"-"`
	Globals     []schema.Global     `yaml:"-"`
	OnInit      InitFunc            `yaml:"-"`
	// Output receives the documents printed by startup hooks. Defaults to stdout.
	Output io.Writer `yaml:"-"`
}

// DefaultConfig returns the runtime defaults with an empty content model.
func DefaultConfig() Config {
	return Config{Config: runtimeconfig.DefaultConfig()}
}

// LoadRuntimeConfig reads runtime settings from a YAML file.
func LoadRuntimeConfig(path string) (RuntimeConfig, error) {
	return runtimeconfig.LoadFile(path)
}

// Validate checks the runtime settings and the content model.
func (c Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	_, err := schema.NewSet(c.Collections, c.Globals)
	return err
}
