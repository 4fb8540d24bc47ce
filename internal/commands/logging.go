package commands

import (
	"strings"

	"github.com/zenao/go-zenao/internal/logging"
	"github.com/zenao/go-zenao/pkg/interfaces"
)

// CommandLogger returns a module-scoped logger for command handlers, tagged
// with the fields every command log entry carries.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.CommandsLogger(provider, name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
