package descriptionscmd

import (
	"errors"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/zenao/go-zenao/internal/commands"
	"github.com/zenao/go-zenao/internal/descriptions"
	"github.com/zenao/go-zenao/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Subscription releases a dispatcher subscription.
type Subscription interface {
	Unsubscribe()
}

// HandlerSet groups the handlers produced by RegisterDescriptionCommands.
type HandlerSet struct {
	SaveProfile   *SaveProfileHandler
	SaveCommunity *SaveCommunityHandler
	SaveEvent     *SaveEventHandler
	Delete        *DeleteDescriptionHandler
}

// Handlers lists the set in registration order.
func (s *HandlerSet) Handlers() []any {
	if s == nil {
		return nil
	}
	return []any{s.SaveProfile, s.SaveCommunity, s.SaveEvent, s.Delete}
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	profileOpts   []commands.HandlerOption[SaveProfileCommand]
	communityOpts []commands.HandlerOption[SaveCommunityCommand]
	eventOpts     []commands.HandlerOption[SaveEventCommand]
	deleteOpts    []commands.HandlerOption[DeleteDescriptionCommand]
}

// WithSaveProfileOptions forwards options to the SaveProfileHandler constructor.
func WithSaveProfileOptions(opts ...commands.HandlerOption[SaveProfileCommand]) Option {
	return func(cfg *options) {
		cfg.profileOpts = append(cfg.profileOpts, opts...)
	}
}

// WithSaveCommunityOptions forwards options to the SaveCommunityHandler constructor.
func WithSaveCommunityOptions(opts ...commands.HandlerOption[SaveCommunityCommand]) Option {
	return func(cfg *options) {
		cfg.communityOpts = append(cfg.communityOpts, opts...)
	}
}

// WithSaveEventOptions forwards options to the SaveEventHandler constructor.
func WithSaveEventOptions(opts ...commands.HandlerOption[SaveEventCommand]) Option {
	return func(cfg *options) {
		cfg.eventOpts = append(cfg.eventOpts, opts...)
	}
}

// WithDeleteOptions forwards options to the DeleteDescriptionHandler constructor.
func WithDeleteOptions(opts ...commands.HandlerOption[DeleteDescriptionCommand]) Option {
	return func(cfg *options) {
		cfg.deleteOpts = append(cfg.deleteOpts, opts...)
	}
}

// RegisterDescriptionCommands builds the description handlers and registers
// them with reg when it is not nil.
func RegisterDescriptionCommands(reg CommandRegistry, service descriptions.Service, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("descriptions command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "descriptions")
	set := &HandlerSet{
		SaveProfile:   NewSaveProfileHandler(service, logger, gates, cfg.profileOpts...),
		SaveCommunity: NewSaveCommunityHandler(service, logger, gates, cfg.communityOpts...),
		SaveEvent:     NewSaveEventHandler(service, logger, gates, cfg.eventOpts...),
		Delete:        NewDeleteDescriptionHandler(service, logger, gates, cfg.deleteOpts...),
	}

	if reg != nil {
		for _, handler := range set.Handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// Subscribe attaches every handler in set to the go-command dispatcher so
// messages sent through dispatcher.Dispatch reach them. Failed executions are
// retried maxRetries times.
func Subscribe(set *HandlerSet, maxRetries int) []Subscription {
	if set == nil {
		return nil
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return []Subscription{
		dispatcher.SubscribeCommand(set.SaveProfile, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(set.SaveCommunity, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(set.SaveEvent, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(set.Delete, runner.WithMaxRetries(maxRetries)),
	}
}
