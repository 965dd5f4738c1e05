package commands

import (
	"strings"

	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
)

// CommandLogger returns the commands logger tagged with the command module,
// for example "documents" or "markdown".
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	return logging.WithFields(logging.CommandsLogger(provider), map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
