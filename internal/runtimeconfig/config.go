package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/zenao/go-zenao/internal/codec"
	"github.com/zenao/go-zenao/internal/markdown"
)

var (
	ErrCodecNotationUnknown     = errors.New("zenao config: codec notation is invalid")
	ErrCodecBodyFieldInvalid    = errors.New("zenao config: codec body field must be a single word")
	ErrStorageProviderUnknown   = errors.New("zenao config: storage provider is invalid")
	ErrStorageDSNRequired       = errors.New("zenao config: storage dsn is required for sql providers")
	ErrCacheTTLInvalid          = errors.New("zenao config: cache ttl must be positive when cache is enabled")
	ErrMarkdownExtensionUnknown = errors.New("zenao config: markdown extension is invalid")
	ErrLoggingProviderRequired  = errors.New("zenao config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown   = errors.New("zenao config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("zenao config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("zenao config: logging format is invalid")
	ErrCommandsFeatureRequired  = errors.New("zenao config: commands feature must be enabled to configure commands")
	ErrCommandsTimeoutInvalid   = errors.New("zenao config: command timeout must be zero or positive")
	ErrCommandsRetriesInvalid   = errors.New("zenao config: command retries must be zero or positive")
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config aggregates codec settings, storage bindings and feature flags.
// Files may be YAML, JSON or TOML; ZENAO_* environment variables override
// file values.
type Config struct {
	Codec    CodecConfig    `yaml:"codec" json:"codec" toml:"codec"`
	Storage  StorageConfig  `yaml:"storage" json:"storage" toml:"storage"`
	Cache    CacheConfig    `yaml:"cache" json:"cache" toml:"cache"`
	Markdown MarkdownConfig `yaml:"markdown" json:"markdown" toml:"markdown"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging" toml:"logging"`
	Features Features       `yaml:"features" json:"features" toml:"features"`
	Commands CommandsConfig `yaml:"commands" json:"commands" toml:"commands"`
}

// CodecConfig selects the writer notation and decode behaviour.
type CodecConfig struct {
	Notation  string `yaml:"notation" json:"notation" toml:"notation" env:"ZENAO_CODEC_NOTATION"`
	BodyField string `yaml:"body_field" json:"body_field" toml:"body_field" env:"ZENAO_CODEC_BODY_FIELD"`
	// LegacyFormats enables reading "+++" TOML and ";;;" JSON headers.
	LegacyFormats bool `yaml:"legacy_formats" json:"legacy_formats" toml:"legacy_formats" env:"ZENAO_CODEC_LEGACY_FORMATS"`
	// RawBodyFallback keeps the raw input as body when a header is unreadable.
	RawBodyFallback bool `yaml:"raw_body_fallback" json:"raw_body_fallback" toml:"raw_body_fallback" env:"ZENAO_CODEC_RAW_BODY_FALLBACK"`
}

// StorageConfig picks where descriptions are persisted.
type StorageConfig struct {
	Provider     string `yaml:"provider" json:"provider" toml:"provider" env:"ZENAO_STORAGE_PROVIDER"`
	DSN          string `yaml:"dsn" json:"dsn" toml:"dsn" env:"ZENAO_STORAGE_DSN"`
	MaxOpenConns int    `yaml:"max_open_conns" json:"max_open_conns" toml:"max_open_conns" env:"ZENAO_STORAGE_MAX_OPEN_CONNS"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" json:"enabled" toml:"enabled" env:"ZENAO_CACHE_ENABLED"`
	DefaultTTL time.Duration `yaml:"default_ttl" json:"default_ttl" toml:"default_ttl" env:"ZENAO_CACHE_DEFAULT_TTL"`
}

// MarkdownConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions" json:"extensions" toml:"extensions" env:"ZENAO_MARKDOWN_EXTENSIONS"`
	Sanitize   bool     `yaml:"sanitize" json:"sanitize" toml:"sanitize" env:"ZENAO_MARKDOWN_SANITIZE"`
	HardWraps  bool     `yaml:"hard_wraps" json:"hard_wraps" toml:"hard_wraps" env:"ZENAO_MARKDOWN_HARD_WRAPS"`
	SafeMode   bool     `yaml:"safe_mode" json:"safe_mode" toml:"safe_mode" env:"ZENAO_MARKDOWN_SAFE_MODE"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" json:"provider" toml:"provider" env:"ZENAO_LOG_PROVIDER"`
	Level     string   `yaml:"level" json:"level" toml:"level" env:"ZENAO_LOG_LEVEL"`
	Format    string   `yaml:"format" json:"format" toml:"format" env:"ZENAO_LOG_FORMAT"`
	AddSource bool     `yaml:"add_source" json:"add_source" toml:"add_source" env:"ZENAO_LOG_ADD_SOURCE"`
	Focus     []string `yaml:"focus" json:"focus" toml:"focus" env:"ZENAO_LOG_FOCUS"`
}

// Features toggles module functionality.
type Features struct {
	Logger   bool `yaml:"logger" json:"logger" toml:"logger" env:"ZENAO_FEATURE_LOGGER"`
	Commands bool `yaml:"commands" json:"commands" toml:"commands" env:"ZENAO_FEATURE_COMMANDS"`
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	// Timeout bounds each command handler; zero disables the bound.
	Timeout time.Duration `yaml:"timeout" json:"timeout" toml:"timeout" env:"ZENAO_COMMANDS_TIMEOUT"`
	// Dispatcher subscribes the handlers to the go-command dispatcher.
	Dispatcher bool `yaml:"dispatcher" json:"dispatcher" toml:"dispatcher" env:"ZENAO_COMMANDS_DISPATCHER"`
	// MaxRetries applies to dispatched executions only.
	MaxRetries int `yaml:"max_retries" json:"max_retries" toml:"max_retries" env:"ZENAO_COMMANDS_MAX_RETRIES"`
}

// DefaultConfig returns an in-memory setup writing JSON headers.
func DefaultConfig() Config {
	return Config{
		Codec: CodecConfig{
			Notation:      codec.NotationJSON,
			BodyField:     codec.DefaultBodyField,
			LegacyFormats: true,
		},
		Storage: StorageConfig{
			Provider: StorageMemory,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Markdown: MarkdownConfig{
			SafeMode: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Load reads DefaultConfig overlaid with the file at path (when not empty)
// and the environment, then validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	var err error
	if strings.TrimSpace(path) == "" {
		err = cleanenv.ReadEnv(&cfg)
	} else {
		err = cleanenv.ReadConfig(path, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("zenao config: load %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if _, err := codec.NotationByName(cfg.Codec.Notation); err != nil {
		return fmt.Errorf("%w: %s", ErrCodecNotationUnknown, cfg.Codec.Notation)
	}
	if field := strings.TrimSpace(cfg.Codec.BodyField); strings.ContainsAny(field, " \t\n") {
		return fmt.Errorf("%w: %q", ErrCodecBodyFieldInvalid, cfg.Codec.BodyField)
	}

	switch provider := normalize(cfg.Storage.Provider); provider {
	case "", StorageMemory:
	case StorageSQLite, StoragePostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}

	for _, ext := range cfg.Markdown.Extensions {
		if !markdown.KnownExtension(ext) {
			return fmt.Errorf("%w: %s", ErrMarkdownExtensionUnknown, ext)
		}
	}

	if cfg.Commands.Timeout < 0 {
		return ErrCommandsTimeoutInvalid
	}
	if cfg.Commands.MaxRetries < 0 {
		return ErrCommandsRetriesInvalid
	}
	if (cfg.Commands.Timeout > 0 || cfg.Commands.Dispatcher) && !cfg.Features.Commands {
		return ErrCommandsFeatureRequired
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// StorageProvider returns the normalized provider, memory when unset.
func (cfg Config) StorageProvider() string {
	if provider := normalize(cfg.Storage.Provider); provider != "" {
		return provider
	}
	return StorageMemory
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
