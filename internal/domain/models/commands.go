package models

import "strings"

// CommandType enumerates the chat commands understood by the production line.
type CommandType string

const (
	CommandProduction CommandType = "produccion"
	CommandCosts      CommandType = "costos"
	CommandWeek       CommandType = "semana"
	CommandUnknown    CommandType = "unknown"
)

// Command represents a parsed instruction extracted from a WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
func ParseCommand(message string) Command {
	normalized := strings.TrimSpace(strings.ToLower(message))
	cmd := Command{Raw: message, Type: CommandUnknown}

	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return cmd
	}

	switch strings.TrimPrefix(tokens[0], "/") {
	case "produccion", "producción", "prod":
		cmd.Type = CommandProduction
	case "costos", "costo":
		cmd.Type = CommandCosts
	case "semana":
		cmd.Type = CommandWeek
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
