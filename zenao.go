package zenao

import (
	descriptionscmd "github.com/zenao/go-zenao/internal/commands/descriptions"
	"github.com/zenao/go-zenao/internal/descriptions"
	"github.com/zenao/go-zenao/internal/di"
	"github.com/zenao/go-zenao/pkg/interfaces"
)

// DescriptionService exports the descriptions service contract.
type DescriptionService = descriptions.Service

// Description is the persisted record holding one serialized string.
type Description = descriptions.Description

// DescriptionKind names the entity a description belongs to.
type DescriptionKind = descriptions.Kind

const (
	KindProfile   = descriptions.KindProfile
	KindCommunity = descriptions.KindCommunity
	KindEvent     = descriptions.KindEvent
)

type (
	ProfileDetails           = descriptions.ProfileDetails
	ProfileMetadata          = descriptions.ProfileMetadata
	CommunityDetails         = descriptions.CommunityDetails
	CommunityMetadata        = descriptions.CommunityMetadata
	EventDetails             = descriptions.EventDetails
	EventMetadata            = descriptions.EventMetadata
	SocialMediaLink          = descriptions.SocialMediaLink
	PortfolioItem            = descriptions.PortfolioItem
	SaveProfileInput         = descriptions.SaveProfileInput
	SaveCommunityInput       = descriptions.SaveCommunityInput
	SaveEventInput           = descriptions.SaveEventInput
	CommandHandlers          = descriptionscmd.HandlerSet
	SaveProfileCommand       = descriptionscmd.SaveProfileCommand
	SaveCommunityCommand     = descriptionscmd.SaveCommunityCommand
	SaveEventCommand         = descriptionscmd.SaveEventCommand
	DeleteDescriptionCommand = descriptionscmd.DeleteDescriptionCommand
)

// Option customises the container built by New.
type Option = di.Option

var (
	WithLoggerProvider        = di.WithLoggerProvider
	WithBunDB                 = di.WithBunDB
	WithCache                 = di.WithCache
	WithDescriptionRepository = di.WithDescriptionRepository
	WithMarkdownRenderer      = di.WithMarkdownRenderer
	WithCommandRegistry       = di.WithCommandRegistry
)

// Module is the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg and optional container overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Codec returns the configured structured content codec.
func (m *Module) Codec() *Codec {
	return m.container.Codec()
}

// Descriptions returns the description service.
func (m *Module) Descriptions() DescriptionService {
	return m.container.DescriptionService()
}

// Markdown returns the renderer used for description bodies.
func (m *Module) Markdown() interfaces.MarkdownRenderer {
	return m.container.MarkdownRenderer()
}

// Commands returns the description command handlers. It is nil unless
// Features.Commands is set.
func (m *Module) Commands() *CommandHandlers {
	return m.container.CommandHandlers()
}

// Close releases storage opened by New.
func (m *Module) Close() error {
	return m.container.Close()
}
