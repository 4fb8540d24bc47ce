package descriptionscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/zenao/go-zenao/internal/descriptions"
)

const (
	saveProfileMessageType   = "zenao.descriptions.save_profile"
	saveCommunityMessageType = "zenao.descriptions.save_community"
	saveEventMessageType     = "zenao.descriptions.save_event"
	deleteMessageType        = "zenao.descriptions.delete"
)

var ownerRule = validation.By(func(value any) error {
	if strings.TrimSpace(value.(string)) == "" {
		return validation.NewError("zenao.descriptions.owner_required", "owner id is required")
	}
	return nil
})

// SaveProfileCommand stores the profile description owned by OwnerID.
type SaveProfileCommand struct {
	OwnerID string                      `json:"owner_id"`
	Details descriptions.ProfileDetails `json:"details"`
}

// Type implements command.Message.
func (SaveProfileCommand) Type() string { return saveProfileMessageType }

// Validate checks the owner and the profile metadata before handlers execute.
func (cmd SaveProfileCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OwnerID, validation.Required, ownerRule),
		validation.Field(&cmd.Details),
	)
}

// SaveCommunityCommand stores a community description. Name, when present,
// becomes the community handle.
type SaveCommunityCommand struct {
	OwnerID string                        `json:"owner_id"`
	Name    string                        `json:"name,omitempty"`
	Details descriptions.CommunityDetails `json:"details"`
}

// Type implements command.Message.
func (SaveCommunityCommand) Type() string { return saveCommunityMessageType }

func (cmd SaveCommunityCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OwnerID, validation.Required, ownerRule),
		validation.Field(&cmd.Name, validation.Length(0, 128)),
		validation.Field(&cmd.Details),
	)
}

// SaveEventCommand stores an event description.
type SaveEventCommand struct {
	OwnerID string                    `json:"owner_id"`
	Details descriptions.EventDetails `json:"details"`
}

// Type implements command.Message.
func (SaveEventCommand) Type() string { return saveEventMessageType }

func (cmd SaveEventCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OwnerID, validation.Required, ownerRule),
	)
}

// DeleteDescriptionCommand removes the description of Kind owned by OwnerID.
type DeleteDescriptionCommand struct {
	Kind    descriptions.Kind `json:"kind"`
	OwnerID string            `json:"owner_id"`
}

// Type implements command.Message.
func (DeleteDescriptionCommand) Type() string { return deleteMessageType }

func (cmd DeleteDescriptionCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Kind, validation.Required, validation.By(func(value any) error {
			if !value.(descriptions.Kind).Valid() {
				return validation.NewError("zenao.descriptions.kind_invalid", "kind must be profile, community or event")
			}
			return nil
		})),
		validation.Field(&cmd.OwnerID, validation.Required, ownerRule),
	)
}
