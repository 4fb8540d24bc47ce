package zenao

import "github.com/zenao/go-zenao/internal/runtimeconfig"

var (
	ErrCodecNotationUnknown     = runtimeconfig.ErrCodecNotationUnknown
	ErrCodecBodyFieldInvalid    = runtimeconfig.ErrCodecBodyFieldInvalid
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrMarkdownExtensionUnknown = runtimeconfig.ErrMarkdownExtensionUnknown
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrCommandsFeatureRequired  = runtimeconfig.ErrCommandsFeatureRequired
	ErrCommandsTimeoutInvalid   = runtimeconfig.ErrCommandsTimeoutInvalid
	ErrCommandsRetriesInvalid   = runtimeconfig.ErrCommandsRetriesInvalid
)

type (
	Config         = runtimeconfig.Config
	CodecConfig    = runtimeconfig.CodecConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
	CommandsConfig = runtimeconfig.CommandsConfig
)

// DefaultConfig returns an in-memory setup writing JSON headers.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads DefaultConfig overlaid with the file at path and ZENAO_*
// environment variables.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
