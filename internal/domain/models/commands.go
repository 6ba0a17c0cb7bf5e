package models

import "strings"

// CommandType enumerates the commands farm staff can send over WhatsApp.
type CommandType string

const (
	CommandFed     CommandType = "fed"
	CommandNext    CommandType = "next"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
// Arguments keep their original case since schedule ids are case sensitive.
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.TrimSpace(message))
	cmd := Command{Raw: message, Type: CommandUnknown}
	if len(tokens) == 0 {
		return cmd
	}

	switch head := strings.ToLower(strings.TrimPrefix(tokens[0], "/")); head {
	case string(CommandFed), "feed":
		cmd.Type = CommandFed
	case string(CommandNext), "due":
		cmd.Type = CommandNext
	case string(CommandHelp), "start":
		cmd.Type = CommandHelp
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
