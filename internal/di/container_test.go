package di_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/uptrace/bun"

	"github.com/zenao/go-zenao/internal/codec"
	descriptionscmd "github.com/zenao/go-zenao/internal/commands/descriptions"
	"github.com/zenao/go-zenao/internal/descriptions"
	"github.com/zenao/go-zenao/internal/di"
	"github.com/zenao/go-zenao/internal/runtimeconfig"
)

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func sqliteConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = runtimeconfig.StorageSQLite
	cfg.Storage.DSN = fmt.Sprintf("file:container_%d?mode=memory&cache=shared", time.Now().UnixNano())
	cfg.Storage.MaxOpenConns = 1
	return cfg
}

func newContainer(t *testing.T, cfg runtimeconfig.Config, opts ...di.Option) *di.Container {
	t.Helper()
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Close(); err != nil {
			t.Errorf("close container: %v", err)
		}
	})
	return container
}

func TestContainerDefaultsToMemoryStorage(t *testing.T) {
	container := newContainer(t, runtimeconfig.DefaultConfig())

	if container.BunDB() != nil {
		t.Fatal("expected no database for memory storage")
	}
	if _, ok := container.DescriptionRepository().(*descriptions.MemoryDescriptionRepository); !ok {
		t.Fatalf("expected memory repository, got %T", container.DescriptionRepository())
	}
	if container.CommandHandlers() != nil {
		t.Fatal("expected commands disabled by default")
	}
	if got := container.Codec().Notation().Name(); got != codec.NotationJSON {
		t.Fatalf("expected json notation, got %q", got)
	}
}

func TestContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Codec.Notation = "xml"

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrCodecNotationUnknown) {
		t.Fatalf("expected ErrCodecNotationUnknown, got %v", err)
	}
}

func TestContainerSQLiteStorageRoundTrip(t *testing.T) {
	container := newContainer(t, sqliteConfig(t))
	ctx := context.Background()

	if container.BunDB() == nil {
		t.Fatal("expected bun database for sqlite storage")
	}
	svc := container.DescriptionService()
	_, err := svc.SaveCommunity(ctx, descriptions.SaveCommunityInput{
		OwnerID: "g1community",
		Name:    "Gno Builders",
		Details: descriptions.CommunityDetails{
			Description:       "We build **things**",
			CommunityMetadata: descriptions.CommunityMetadata{ShortDescription: "builders"},
		},
	})
	if err != nil {
		t.Fatalf("save community: %v", err)
	}

	got, err := svc.CommunityByHandle(ctx, "gno-builders")
	if err != nil {
		t.Fatalf("community by handle: %v", err)
	}
	if got.ShortDescription != "builders" || got.Description != "We build **things**" {
		t.Fatalf("unexpected community %+v", got)
	}

	html, err := svc.Render(ctx, descriptions.KindCommunity, "g1community")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(html), "<strong>things</strong>") {
		t.Fatalf("expected rendered markdown, got %s", html)
	}
}

func TestContainerSQLiteWithCache(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.DefaultTTL = time.Minute
	container := newContainer(t, cfg)
	ctx := context.Background()

	svc := container.DescriptionService()
	if _, err := svc.SaveProfile(ctx, descriptions.SaveProfileInput{
		OwnerID: "g1alice",
		Details: descriptions.ProfileDetails{Bio: "first"},
	}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if _, err := svc.SaveProfile(ctx, descriptions.SaveProfileInput{
		OwnerID: "g1alice",
		Details: descriptions.ProfileDetails{Bio: "second"},
	}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	got, err := svc.Profile(ctx, "g1alice")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got.Bio != "second" {
		t.Fatalf("expected updated bio after cache invalidation, got %q", got.Bio)
	}
}

func TestContainerUsesProvidedBunDB(t *testing.T) {
	first := newContainer(t, sqliteConfig(t))
	db := first.BunDB()

	second := newContainer(t, runtimeconfig.DefaultConfig(), di.WithBunDB(db))
	if second.BunDB() != db {
		t.Fatal("expected container to reuse supplied database")
	}
	if _, ok := second.DescriptionRepository().(*descriptions.BunDescriptionRepository); !ok {
		t.Fatalf("expected bun repository, got %T", second.DescriptionRepository())
	}
	var _ *bun.DB = second.BunDB()
}

func TestContainerCommandsFeature(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Commands = true
	cfg.Commands.Timeout = 5 * time.Second

	reg := &recordingRegistry{}
	container := newContainer(t, cfg, di.WithCommandRegistry(reg))

	set := container.CommandHandlers()
	if set == nil {
		t.Fatal("expected command handlers when commands feature is enabled")
	}
	if len(reg.handlers) != 4 {
		t.Fatalf("expected four handlers registered, got %d", len(reg.handlers))
	}

	ctx := context.Background()
	err := set.SaveEvent.Execute(ctx, descriptionscmd.SaveEventCommand{
		OwnerID: "g1event",
		Details: descriptions.EventDetails{
			Description:   "Join us",
			EventMetadata: descriptions.EventMetadata{Summary: "meetup", Tags: []string{"gno"}},
		},
	})
	if err != nil {
		t.Fatalf("execute save event: %v", err)
	}
	got, err := container.DescriptionService().Event(ctx, "g1event")
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	if got.Summary != "meetup" || got.Description != "Join us" {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestContainerSubscribesDispatcherWhenConfigured(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Commands = true
	cfg.Commands.Dispatcher = true
	cfg.Commands.MaxRetries = 1

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	ctx := context.Background()
	if err := dispatcher.Dispatch(ctx, descriptionscmd.SaveProfileCommand{
		OwnerID: "g1container",
		Details: descriptions.ProfileDetails{Bio: "dispatched"},
	}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	got, err := container.DescriptionService().Profile(ctx, "g1container")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got.Bio != "dispatched" {
		t.Fatalf("expected dispatched bio, got %q", got.Bio)
	}

	if err := container.Close(); err != nil {
		t.Fatalf("close container: %v", err)
	}
	_ = dispatcher.Dispatch(ctx, descriptionscmd.SaveProfileCommand{
		OwnerID: "g1container",
		Details: descriptions.ProfileDetails{Bio: "after close"},
	})
	got, err = container.DescriptionService().Profile(ctx, "g1container")
	if err != nil {
		t.Fatalf("profile after close: %v", err)
	}
	if got.Bio != "dispatched" {
		t.Fatalf("expected handlers unsubscribed on close, got %q", got.Bio)
	}
}

func TestContainerCodecHonoursConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Codec.Notation = codec.NotationYAML
	cfg.Codec.BodyField = "body"
	cfg.Codec.LegacyFormats = false
	container := newContainer(t, cfg)

	c := container.Codec()
	if c.BodyField() != "body" {
		t.Fatalf("expected body field from config, got %q", c.BodyField())
	}
	encoded, err := c.Encode("hello", map[string]any{"title": "t"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(encoded, "---\ntitle: t\n---\n") {
		t.Fatalf("expected yaml header, got %q", encoded)
	}

	_, body, report := c.Split("+++\ntitle = \"t\"\n+++\nbody")
	if report.Parser != "" {
		t.Fatalf("expected no parser to accept legacy toml, got %q", report.Parser)
	}
	if body != "+++\ntitle = \"t\"\n+++\nbody" {
		t.Fatalf("expected whole input as body, got %q", body)
	}
}
