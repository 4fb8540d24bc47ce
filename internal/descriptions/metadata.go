package descriptions

import (
	"errors"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/zenao/go-zenao/internal/codec"
)

const (
	ProfileBodyField   = "bio"
	CommunityBodyField = "description"
	EventBodyField     = "description"

	maxShortText = 280
	maxBodyBytes = 64 * 1024
	maxLinks     = 32
)

var errInvalidURL = errors.New("must be an absolute http(s) URL")

// SocialMediaLink points to an external account.
type SocialMediaLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

func (l SocialMediaLink) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Platform, validation.Required, validation.Length(1, 64)),
		validation.Field(&l.URL, validation.Required, validation.By(absoluteURL)),
	)
}

// PortfolioItem references an uploaded media file. Type and URI are opaque
// to the codec.
type PortfolioItem struct {
	Type       string    `json:"type"`
	URI        string    `json:"uri"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (p PortfolioItem) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.Required),
		validation.Field(&p.URI, validation.Required),
	)
}

// ProfileMetadata is the header of a profile description.
type ProfileMetadata struct {
	ShortBio         string            `json:"shortBio"`
	SocialMediaLinks []SocialMediaLink `json:"socialMediaLinks"`
}

func (m ProfileMetadata) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ShortBio, validation.Length(0, maxShortText)),
		validation.Field(&m.SocialMediaLinks, validation.Length(0, maxLinks)),
	)
}

// ProfileDetails is a decoded profile: metadata plus the markdown bio.
type ProfileDetails struct {
	Bio string `json:"bio"`
	ProfileMetadata
}

func (d ProfileDetails) Validate() error {
	if err := validation.Validate(d.Bio, validation.Length(0, maxBodyBytes)); err != nil {
		return validation.Errors{ProfileBodyField: err}
	}
	return d.ProfileMetadata.Validate()
}

// CommunityMetadata is the header of a community description.
type CommunityMetadata struct {
	ShortDescription string            `json:"shortDescription"`
	Portfolio        []PortfolioItem   `json:"portfolio"`
	SocialMediaLinks []SocialMediaLink `json:"socialMediaLinks"`
}

func (m CommunityMetadata) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ShortDescription, validation.Length(0, maxShortText)),
		validation.Field(&m.Portfolio),
		validation.Field(&m.SocialMediaLinks, validation.Length(0, maxLinks)),
	)
}

// CommunityDetails is a decoded community description.
type CommunityDetails struct {
	Description string `json:"description"`
	CommunityMetadata
}

func (d CommunityDetails) Validate() error {
	if err := validation.Validate(d.Description, validation.Length(0, maxBodyBytes)); err != nil {
		return validation.Errors{CommunityBodyField: err}
	}
	return d.CommunityMetadata.Validate()
}

// EventMetadata is the header of an event description. Unlike profiles and
// communities it is checked against a JSON schema.
type EventMetadata struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// EventDetails is a decoded event description.
type EventDetails struct {
	Description string `json:"description"`
	EventMetadata
}

// eventJSONSchema mirrors EventDetails.
var eventJSONSchema = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"properties": map[string]any{
		"description": map[string]any{"type": "string"},
		"summary":     map[string]any{"type": "string", "maxLength": maxShortText},
		"tags": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string", "minLength": 1, "maxLength": 32},
			"maxItems": 16,
			"default":  []any{},
		},
	},
	"required": []any{"description", "summary"},
}

var (
	profileSchema   = codec.StructSchema[ProfileDetails]().WithBody(ProfileBodyField)
	communitySchema = codec.StructSchema[CommunityDetails]().WithBody(CommunityBodyField)
	eventSchema     = codec.MustJSONSchema(eventJSONSchema).WithBody(EventBodyField)
)

// ProfileSchema validates decoded profile descriptions.
func ProfileSchema() codec.Schema[ProfileDetails] { return profileSchema }

// CommunitySchema validates decoded community descriptions.
func CommunitySchema() codec.Schema[CommunityDetails] { return communitySchema }

// EventSchema validates decoded event descriptions against the event JSON
// schema before decoding them into EventDetails.
func EventSchema() codec.Schema[EventDetails] {
	return codec.TypedJSONSchema[EventDetails](eventSchema)
}

// EventMapSchema is EventSchema without the typed step, for callers that
// want the raw validated header.
func EventMapSchema() *codec.JSONSchemaValidator { return eventSchema }

func absoluteURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return errInvalidURL
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return nil
	}
	return errInvalidURL
}

func normalizeLinks(links []SocialMediaLink) []SocialMediaLink {
	out := make([]SocialMediaLink, 0, len(links))
	for _, link := range links {
		link.Platform = strings.TrimSpace(link.Platform)
		link.URL = strings.TrimSpace(link.URL)
		out = append(out, link)
	}
	return out
}

func normalizePortfolio(items []PortfolioItem) []PortfolioItem {
	out := make([]PortfolioItem, 0, len(items))
	for _, item := range items {
		item.UploadedAt = item.UploadedAt.UTC()
		out = append(out, item)
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
