package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/zenao/go-zenao/pkg/interfaces"
)

const (
	rootModule         = "zenao"
	codecModule        = "zenao.codec"
	descriptionsModule = "zenao.descriptions"
	commandsModule     = "zenao.commands"
)

// ModuleLogger resolves a named logger from provider and tags it with the
// module name. A nil provider yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// CodecLogger is the logger namespace used by the structured content codec.
func CodecLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, codecModule)
}

// DescriptionsLogger is the logger namespace used by the descriptions service.
func DescriptionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, descriptionsModule)
}

// CommandsLogger returns the namespace for a command module, e.g.
// zenao.commands.descriptions.
func CommandsLogger(provider interfaces.LoggerProvider, name string) interfaces.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return ModuleLogger(provider, commandsModule)
	}
	return ModuleLogger(provider, commandsModule+"."+name)
}

// WithFields attaches fields when logger implements interfaces.FieldsLogger
// and returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}

// WithDescription tags logger with the description kind and owner.
func WithDescription(logger interfaces.Logger, kind, owner string) interfaces.Logger {
	fields := map[string]any{}
	if kind = strings.TrimSpace(kind); kind != "" {
		fields["description_kind"] = kind
	}
	if owner = strings.TrimSpace(owner); owner != "" {
		fields["owner_id"] = owner
	}
	return WithFields(logger, fields)
}

type contextKey struct{}

// ContextWithFields stores fields on ctx, merged over any fields already
// present. Loggers built with WithContext pick them up.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextKey{}, merged)
}

// ContextFields returns a copy of the fields stored on ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger   { return n }
func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
