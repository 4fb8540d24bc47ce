package descriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/zenao/go-zenao/internal/codec"
	"github.com/zenao/go-zenao/internal/identity"
	"github.com/zenao/go-zenao/internal/logging"
	"github.com/zenao/go-zenao/pkg/interfaces"
)

// Service persists, decodes and renders entity descriptions.
type Service interface {
	SaveProfile(ctx context.Context, input SaveProfileInput) (*Description, error)
	Profile(ctx context.Context, ownerID string) (ProfileDetails, error)

	SaveCommunity(ctx context.Context, input SaveCommunityInput) (*Description, error)
	Community(ctx context.Context, ownerID string) (CommunityDetails, error)
	CommunityByHandle(ctx context.Context, handle string) (CommunityDetails, error)

	SaveEvent(ctx context.Context, input SaveEventInput) (*Description, error)
	Event(ctx context.Context, ownerID string) (EventDetails, error)

	Render(ctx context.Context, kind Kind, ownerID string) ([]byte, error)
	Raw(ctx context.Context, kind Kind, ownerID string) (*Description, error)
	List(ctx context.Context, kind Kind) ([]*Description, error)
	Delete(ctx context.Context, kind Kind, ownerID string) error
}

// SaveProfileInput captures the payload required to store a profile description.
type SaveProfileInput struct {
	OwnerID string
	Details ProfileDetails
}

// SaveCommunityInput captures the payload required to store a community
// description. Name, when set, is slugged into the community handle.
type SaveCommunityInput struct {
	OwnerID string
	Name    string
	Details CommunityDetails
}

// SaveEventInput captures the payload required to store an event description.
type SaveEventInput struct {
	OwnerID string
	Details EventDetails
}

var (
	ErrRepositoryRequired = errors.New("descriptions: repository required")
	ErrOwnerRequired      = errors.New("descriptions: owner id required")
	ErrKindInvalid        = errors.New("descriptions: unknown kind")
	ErrHandleInvalid      = errors.New("descriptions: community name does not produce a handle")
	ErrHandleTaken        = errors.New("descriptions: community handle already in use")
	ErrRendererRequired   = errors.New("descriptions: markdown renderer required")
)

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithCodec overrides the codec used to encode and decode content.
func WithCodec(c *codec.Codec) ServiceOption {
	return func(s *service) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithRenderer sets the markdown renderer used by Render.
func WithRenderer(renderer interfaces.MarkdownRenderer) ServiceOption {
	return func(s *service) {
		s.renderer = renderer
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	repo     DescriptionRepository
	codec    *codec.Codec
	renderer interfaces.MarkdownRenderer
	logger   interfaces.Logger
	now      func() time.Time
}

// NewService constructs a descriptions service.
func NewService(repo DescriptionRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{
		repo:   repo,
		codec:  codec.New(),
		logger: logging.DescriptionsLogger(nil),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) SaveProfile(ctx context.Context, input SaveProfileInput) (*Description, error) {
	details := input.Details
	details.SocialMediaLinks = normalizeLinks(details.SocialMediaLinks)
	if err := details.Validate(); err != nil {
		return nil, err
	}
	return s.save(ctx, KindProfile, input.OwnerID, "", details.Bio, details.ProfileMetadata)
}

func (s *service) Profile(ctx context.Context, ownerID string) (ProfileDetails, error) {
	content, err := s.content(ctx, KindProfile, ownerID)
	return codec.Decode(s.codec, content, ProfileSchema()), err
}

func (s *service) SaveCommunity(ctx context.Context, input SaveCommunityInput) (*Description, error) {
	details := input.Details
	details.SocialMediaLinks = normalizeLinks(details.SocialMediaLinks)
	details.Portfolio = normalizePortfolio(details.Portfolio)
	if err := details.Validate(); err != nil {
		return nil, err
	}

	handle := ""
	if name := strings.TrimSpace(input.Name); name != "" {
		normalized, err := slug.Normalize(name)
		if err != nil || normalized == "" {
			return nil, ErrHandleInvalid
		}
		handle = normalized
		existing, err := s.repo.GetByHandle(ctx, handle)
		if err != nil && !IsNotFound(err) {
			return nil, err
		}
		if existing != nil && existing.OwnerID != strings.TrimSpace(input.OwnerID) {
			return nil, ErrHandleTaken
		}
	}
	return s.save(ctx, KindCommunity, input.OwnerID, handle, details.Description, details.CommunityMetadata)
}

func (s *service) Community(ctx context.Context, ownerID string) (CommunityDetails, error) {
	content, err := s.content(ctx, KindCommunity, ownerID)
	return codec.Decode(s.codec, content, CommunitySchema()), err
}

func (s *service) CommunityByHandle(ctx context.Context, handle string) (CommunityDetails, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return codec.Decode(s.codec, "", CommunitySchema()), &NotFoundError{Resource: "description", Key: handle}
	}
	record, err := s.repo.GetByHandle(ctx, handle)
	if err != nil {
		return codec.Decode(s.codec, "", CommunitySchema()), err
	}
	return codec.Decode(s.codec, record.Content, CommunitySchema()), nil
}

func (s *service) SaveEvent(ctx context.Context, input SaveEventInput) (*Description, error) {
	details := input.Details
	details.Tags = normalizeTags(details.Tags)
	if err := validation.Validate(details.Description, validation.Length(0, maxBodyBytes)); err != nil {
		return nil, validation.Errors{EventBodyField: err}
	}

	metadata, err := s.validateEventHeader(details)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, KindEvent, input.OwnerID, "", details.Description, metadata)
}

// validateEventHeader runs the event JSON schema over the header about to be
// written so stored events always decode without falling back.
func (s *service) validateEventHeader(details EventDetails) (EventMetadata, error) {
	payload := map[string]any{
		EventBodyField: details.Description,
		"summary":      details.Summary,
		"tags":         toAnySlice(details.Tags),
	}
	if _, err := EventMapSchema().Validate(payload); err != nil {
		return EventMetadata{}, err
	}
	return details.EventMetadata, nil
}

func (s *service) Event(ctx context.Context, ownerID string) (EventDetails, error) {
	content, err := s.content(ctx, KindEvent, ownerID)
	return codec.Decode(s.codec, content, EventSchema()), err
}

func (s *service) Render(ctx context.Context, kind Kind, ownerID string) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrRendererRequired
	}
	body, err := s.body(ctx, kind, ownerID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render([]byte(body))
}

func (s *service) Raw(ctx context.Context, kind Kind, ownerID string) (*Description, error) {
	id, err := descriptionID(kind, ownerID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, kind Kind) ([]*Description, error) {
	if !kind.Valid() {
		return nil, ErrKindInvalid
	}
	return s.repo.ListByKind(ctx, kind)
}

func (s *service) Delete(ctx context.Context, kind Kind, ownerID string) error {
	id, err := descriptionID(kind, ownerID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logging.WithDescription(s.logger, string(kind), ownerID).Info("descriptions.deleted")
	return nil
}

// body decodes the stored content of kind and returns its body field.
func (s *service) body(ctx context.Context, kind Kind, ownerID string) (string, error) {
	if !kind.Valid() {
		return "", ErrKindInvalid
	}
	content, err := s.content(ctx, kind, ownerID)
	if err != nil {
		return "", err
	}
	switch kind {
	case KindProfile:
		return codec.Decode(s.codec, content, ProfileSchema()).Bio, nil
	case KindCommunity:
		return codec.Decode(s.codec, content, CommunitySchema()).Description, nil
	default:
		return codec.Decode(s.codec, content, EventSchema()).Description, nil
	}
}

// content loads the stored string. A missing record yields "" and no error,
// which decodes to the empty fallback.
func (s *service) content(ctx context.Context, kind Kind, ownerID string) (string, error) {
	record, err := s.Raw(ctx, kind, ownerID)
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return record.Content, nil
}

func (s *service) save(ctx context.Context, kind Kind, ownerID, handle, body string, metadata any) (*Description, error) {
	ownerID = strings.TrimSpace(ownerID)
	id, err := descriptionID(kind, ownerID)
	if err != nil {
		return nil, err
	}
	logger := logging.WithDescription(s.logger, string(kind), ownerID)

	content, err := s.codec.Encode(body, metadata)
	if err != nil {
		logger.Error("descriptions.encode_failed", "error", err)
		return nil, err
	}

	now := s.now().UTC()
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}

	if existing == nil {
		record, err := s.repo.Create(ctx, &Description{
			ID:        id,
			Kind:      kind,
			OwnerID:   ownerID,
			Handle:    handle,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("descriptions.created", "description_id", id.String())
		return record, nil
	}

	// A save without a name keeps the published handle.
	if handle != "" {
		existing.Handle = handle
	}
	existing.Content = content
	existing.UpdatedAt = now
	record, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	logger.Info("descriptions.updated", "description_id", id.String())
	return record, nil
}

func descriptionID(kind Kind, ownerID string) (uuid.UUID, error) {
	if !kind.Valid() {
		return uuid.Nil, ErrKindInvalid
	}
	id := identity.DescriptionUUID(string(kind), ownerID)
	if id == uuid.Nil {
		return uuid.Nil, ErrOwnerRequired
	}
	return id, nil
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
