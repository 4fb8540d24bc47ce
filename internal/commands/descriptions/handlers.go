package descriptionscmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/zenao/go-zenao/internal/commands"
	"github.com/zenao/go-zenao/internal/descriptions"
	"github.com/zenao/go-zenao/internal/logging"
	"github.com/zenao/go-zenao/pkg/interfaces"
)

const (
	saveProfileOperation   = "descriptions.save_profile"
	saveCommunityOperation = "descriptions.save_community"
	saveEventOperation     = "descriptions.save_event"
	deleteOperation        = "descriptions.delete"
)

// ErrCommandsDisabled is returned when the commands feature is switched off at runtime.
var ErrCommandsDisabled = errors.New("descriptions command: feature disabled")

var (
	_ command.Commander[SaveProfileCommand]       = (*SaveProfileHandler)(nil)
	_ command.Commander[SaveCommunityCommand]     = (*SaveCommunityHandler)(nil)
	_ command.Commander[SaveEventCommand]         = (*SaveEventHandler)(nil)
	_ command.Commander[DeleteDescriptionCommand] = (*DeleteDescriptionHandler)(nil)
)

// SaveProfileHandler persists profile descriptions.
type SaveProfileHandler struct {
	inner *commands.Handler[SaveProfileCommand]
}

// NewSaveProfileHandler binds a SaveProfileHandler to service.
func NewSaveProfileHandler(service descriptions.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[SaveProfileCommand]) *SaveProfileHandler {
	baseLogger := orNoOp(logger)
	exec := func(ctx context.Context, msg SaveProfileCommand) error {
		if err := ready(ctx, gates); err != nil {
			return err
		}
		record, err := service.SaveProfile(ctx, descriptions.SaveProfileInput{
			OwnerID: msg.OwnerID,
			Details: msg.Details,
		})
		if err != nil {
			return err
		}
		logSaved(baseLogger, record, "descriptions.command.save_profile.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[SaveProfileCommand]{
		commands.WithLogger[SaveProfileCommand](baseLogger),
		commands.WithOperation[SaveProfileCommand](saveProfileOperation),
		commands.WithMessageFields(func(msg SaveProfileCommand) map[string]any {
			return map[string]any{"owner_id": msg.OwnerID, "kind": descriptions.KindProfile}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SaveProfileCommand](baseLogger)),
	}
	return &SaveProfileHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[SaveProfileCommand].
func (h *SaveProfileHandler) Execute(ctx context.Context, msg SaveProfileCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SaveCommunityHandler persists community descriptions.
type SaveCommunityHandler struct {
	inner *commands.Handler[SaveCommunityCommand]
}

// NewSaveCommunityHandler binds a SaveCommunityHandler to service.
func NewSaveCommunityHandler(service descriptions.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[SaveCommunityCommand]) *SaveCommunityHandler {
	baseLogger := orNoOp(logger)
	exec := func(ctx context.Context, msg SaveCommunityCommand) error {
		if err := ready(ctx, gates); err != nil {
			return err
		}
		record, err := service.SaveCommunity(ctx, descriptions.SaveCommunityInput{
			OwnerID: msg.OwnerID,
			Name:    msg.Name,
			Details: msg.Details,
		})
		if err != nil {
			return err
		}
		logSaved(baseLogger, record, "descriptions.command.save_community.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[SaveCommunityCommand]{
		commands.WithLogger[SaveCommunityCommand](baseLogger),
		commands.WithOperation[SaveCommunityCommand](saveCommunityOperation),
		commands.WithMessageFields(func(msg SaveCommunityCommand) map[string]any {
			fields := map[string]any{"owner_id": msg.OwnerID, "kind": descriptions.KindCommunity}
			if msg.Name != "" {
				fields["name"] = msg.Name
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SaveCommunityCommand](baseLogger)),
	}
	return &SaveCommunityHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[SaveCommunityCommand].
func (h *SaveCommunityHandler) Execute(ctx context.Context, msg SaveCommunityCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SaveEventHandler persists event descriptions.
type SaveEventHandler struct {
	inner *commands.Handler[SaveEventCommand]
}

// NewSaveEventHandler binds a SaveEventHandler to service.
func NewSaveEventHandler(service descriptions.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[SaveEventCommand]) *SaveEventHandler {
	baseLogger := orNoOp(logger)
	exec := func(ctx context.Context, msg SaveEventCommand) error {
		if err := ready(ctx, gates); err != nil {
			return err
		}
		record, err := service.SaveEvent(ctx, descriptions.SaveEventInput{
			OwnerID: msg.OwnerID,
			Details: msg.Details,
		})
		if err != nil {
			return err
		}
		logSaved(baseLogger, record, "descriptions.command.save_event.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[SaveEventCommand]{
		commands.WithLogger[SaveEventCommand](baseLogger),
		commands.WithOperation[SaveEventCommand](saveEventOperation),
		commands.WithMessageFields(func(msg SaveEventCommand) map[string]any {
			return map[string]any{
				"owner_id":  msg.OwnerID,
				"kind":      descriptions.KindEvent,
				"tag_count": len(msg.Details.Tags),
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SaveEventCommand](baseLogger)),
	}
	return &SaveEventHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[SaveEventCommand].
func (h *SaveEventHandler) Execute(ctx context.Context, msg SaveEventCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteDescriptionHandler removes stored descriptions.
type DeleteDescriptionHandler struct {
	inner *commands.Handler[DeleteDescriptionCommand]
}

// NewDeleteDescriptionHandler binds a DeleteDescriptionHandler to service.
func NewDeleteDescriptionHandler(service descriptions.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[DeleteDescriptionCommand]) *DeleteDescriptionHandler {
	baseLogger := orNoOp(logger)
	exec := func(ctx context.Context, msg DeleteDescriptionCommand) error {
		if err := ready(ctx, gates); err != nil {
			return err
		}
		return service.Delete(ctx, msg.Kind, msg.OwnerID)
	}

	handlerOpts := []commands.HandlerOption[DeleteDescriptionCommand]{
		commands.WithLogger[DeleteDescriptionCommand](baseLogger),
		commands.WithOperation[DeleteDescriptionCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeleteDescriptionCommand) map[string]any {
			return map[string]any{"owner_id": msg.OwnerID, "kind": msg.Kind}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeleteDescriptionCommand](baseLogger)),
	}
	return &DeleteDescriptionHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[DeleteDescriptionCommand].
func (h *DeleteDescriptionHandler) Execute(ctx context.Context, msg DeleteDescriptionCommand) error {
	return h.inner.Execute(ctx, msg)
}

func ready(ctx context.Context, gates FeatureGates) error {
	if !gates.commandsEnabled() {
		return ErrCommandsDisabled
	}
	return ctx.Err()
}

func orNoOp(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

func logSaved(logger interfaces.Logger, record *descriptions.Description, msg string) {
	if record == nil {
		return
	}
	logging.WithFields(logger, map[string]any{
		"description_id": record.ID,
		"handle":         record.Handle,
		"content_bytes":  len(record.Content),
	}).Info(msg)
}
