package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/zenao/go-zenao/internal/codec"
	"github.com/zenao/go-zenao/internal/commands"
	descriptionscmd "github.com/zenao/go-zenao/internal/commands/descriptions"
	"github.com/zenao/go-zenao/internal/descriptions"
	"github.com/zenao/go-zenao/internal/logging"
	"github.com/zenao/go-zenao/internal/logging/console"
	"github.com/zenao/go-zenao/internal/logging/gologger"
	"github.com/zenao/go-zenao/internal/markdown"
	"github.com/zenao/go-zenao/internal/runtimeconfig"
	"github.com/zenao/go-zenao/pkg/interfaces"
)

// Container wires the codec, storage, description service and command
// handlers from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	codec    *codec.Codec
	renderer interfaces.MarkdownRenderer

	bunDB   *bun.DB
	closers []func() error

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	descriptionRepo descriptions.DescriptionRepository
	descriptionSvc  descriptions.Service

	commandRegistry descriptionscmd.CommandRegistry
	commandSet      *descriptionscmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider derived from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB supplies an externally managed database. The container never
// closes it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithDescriptionRepository bypasses storage configuration entirely.
func WithDescriptionRepository(repo descriptions.DescriptionRepository) Option {
	return func(c *Container) {
		c.descriptionRepo = repo
	}
}

// WithMarkdownRenderer overrides the goldmark renderer built from config.
func WithMarkdownRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(c *Container) {
		if renderer != nil {
			c.renderer = renderer
		}
	}
}

// WithCommandRegistry registers description handlers with reg when the
// commands feature is on.
func WithCommandRegistry(reg descriptionscmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// NewContainer validates cfg and builds every module. Databases opened here
// are released by Close.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureCodec(); err != nil {
		return nil, err
	}
	c.configureRenderer()
	c.configureCacheDefaults()
	if err := c.configureRepositories(); err != nil {
		c.Close()
		return nil, err
	}

	c.descriptionSvc = descriptions.NewService(c.descriptionRepo,
		descriptions.WithCodec(c.codec),
		descriptions.WithRenderer(c.renderer),
		descriptions.WithLogger(logging.DescriptionsLogger(c.loggerProvider)),
	)

	if err := c.configureCommands(); err != nil {
		c.Close()
		return nil, err
	}

	logging.WithFields(c.logger, map[string]any{
		"storage":  c.Config.StorageProvider(),
		"notation": c.codec.Notation().Name(),
		"cache":    c.cacheService != nil,
		"commands": c.commandSet != nil,
		"dispatch": c.Config.Commands.Dispatcher,
	}).Info("container.configured")
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		switch c.Config.Logging.Provider {
		case "gologger":
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     c.Config.Logging.Level,
				Format:    c.Config.Logging.Format,
				AddSource: c.Config.Logging.AddSource,
				Focus:     c.Config.Logging.Focus,
			})
			if err != nil {
				return err
			}
			c.loggerProvider = provider
		default:
			level, _ := console.ParseLevel(c.Config.Logging.Level)
			c.loggerProvider = console.NewProvider(console.Options{Writer: os.Stderr, MinLevel: &level})
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "zenao.container")
	return nil
}

func (c *Container) configureCodec() error {
	notation, err := codec.NotationByName(c.Config.Codec.Notation)
	if err != nil {
		return err
	}
	parsers := []codec.HeaderParser{
		codec.DelimitedParser(codec.JSON()),
		codec.DelimitedParser(codec.YAML()),
	}
	if c.Config.Codec.LegacyFormats {
		parsers = append(parsers, codec.LegacyParser())
	}
	c.codec = codec.New(
		codec.WithNotation(notation),
		codec.WithParsers(parsers...),
		codec.WithDefaultBodyField(c.Config.Codec.BodyField),
		codec.WithRawBodyOnMalformedHeader(c.Config.Codec.RawBodyFallback),
		codec.WithLogger(logging.CodecLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configureRenderer() {
	if c.renderer != nil {
		return
	}
	md := c.Config.Markdown
	c.renderer = markdown.NewGoldmarkRenderer(interfaces.ParseOptions{
		Extensions: md.Extensions,
		Sanitize:   md.Sanitize,
		HardWraps:  md.HardWraps,
		SafeMode:   md.SafeMode,
	})
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("cache.disabled", "error", err)
		} else {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() error {
	if c.descriptionRepo != nil {
		return nil
	}

	if c.bunDB == nil {
		db, err := c.openDB()
		if err != nil {
			return err
		}
		if db == nil {
			c.descriptionRepo = descriptions.NewMemoryDescriptionRepository()
			return nil
		}
		c.bunDB = db
		c.closers = append(c.closers, db.Close)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := descriptions.EnsureSchema(ctx, c.bunDB); err != nil {
		return err
	}
	c.descriptionRepo = descriptions.NewBunDescriptionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	return nil
}

// openDB returns nil for the memory provider.
func (c *Container) openDB() (*bun.DB, error) {
	storage := c.Config.Storage
	switch c.Config.StorageProvider() {
	case runtimeconfig.StorageSQLite:
		sqldb, err := sql.Open("sqlite3", storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("zenao storage: open sqlite: %w", err)
		}
		if storage.MaxOpenConns > 0 {
			sqldb.SetMaxOpenConns(storage.MaxOpenConns)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case runtimeconfig.StoragePostgres:
		poolConfig, err := pgxpool.ParseConfig(storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("zenao storage: parse postgres dsn: %w", err)
		}
		if storage.MaxOpenConns > 0 {
			poolConfig.MaxConns = int32(storage.MaxOpenConns)
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			return nil, fmt.Errorf("zenao storage: connect postgres: %w", err)
		}
		c.closers = append(c.closers, func() error {
			pool.Close()
			return nil
		})
		return bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New()), nil
	default:
		return nil, nil
	}
}

func (c *Container) configureCommands() error {
	if !c.Config.Features.Commands {
		return nil
	}
	timeout := c.Config.Commands.Timeout
	gates := descriptionscmd.FeatureGates{
		CommandsEnabled: func() bool { return c.Config.Features.Commands },
	}
	set, err := descriptionscmd.RegisterDescriptionCommands(c.commandRegistry, c.descriptionSvc, c.loggerProvider, gates,
		descriptionscmd.WithSaveProfileOptions(commands.WithTimeout[descriptionscmd.SaveProfileCommand](timeout)),
		descriptionscmd.WithSaveCommunityOptions(commands.WithTimeout[descriptionscmd.SaveCommunityCommand](timeout)),
		descriptionscmd.WithSaveEventOptions(commands.WithTimeout[descriptionscmd.SaveEventCommand](timeout)),
		descriptionscmd.WithDeleteOptions(commands.WithTimeout[descriptionscmd.DeleteDescriptionCommand](timeout)),
	)
	if err != nil {
		return err
	}
	c.commandSet = set

	if c.Config.Commands.Dispatcher {
		subs := descriptionscmd.Subscribe(set, c.Config.Commands.MaxRetries)
		c.closers = append(c.closers, func() error {
			for _, sub := range subs {
				sub.Unsubscribe()
			}
			return nil
		})
		c.logger.Debug("container.commands.subscribed", "handlers", len(subs), "max_retries", c.Config.Commands.MaxRetries)
	}
	return nil
}

// LoggerProvider returns the active provider, nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Codec returns the configured codec.
func (c *Container) Codec() *codec.Codec {
	return c.codec
}

// MarkdownRenderer returns the renderer used for description bodies.
func (c *Container) MarkdownRenderer() interfaces.MarkdownRenderer {
	return c.renderer
}

// BunDB exposes the database handle, nil for in-memory storage.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// DescriptionRepository returns the repository behind the description service.
func (c *Container) DescriptionRepository() descriptions.DescriptionRepository {
	return c.descriptionRepo
}

// DescriptionService returns the description service.
func (c *Container) DescriptionService() descriptions.Service {
	return c.descriptionSvc
}

// CommandHandlers returns the description handlers, nil when commands are off.
func (c *Container) CommandHandlers() *descriptionscmd.HandlerSet {
	return c.commandSet
}

// Close releases databases opened by the container.
func (c *Container) Close() error {
	var errs error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, c.closers[i]())
	}
	c.closers = nil
	return errs
}
