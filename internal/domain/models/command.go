package models

import "strings"

type CommandType string

const (
	CommandStart      CommandType = "/start"
	CommandHelp       CommandType = "/help"
	CommandStop       CommandType = "/stop"
	CommandStatus     CommandType = "/status"
	CommandInterval   CommandType = "/interval"
	CommandSetGroup   CommandType = "/setgroup"
	CommandListGroups CommandType = "/listgroups"
	CommandUseGroup   CommandType = "/usegroup"
	CommandSetUser    CommandType = "/setuser"
	CommandReset      CommandType = "/reset"
	CommandTest       CommandType = "/test"
	CommandUnknown    CommandType = "unknown"
)

type Command struct {
	Type     CommandType
	ChatID   int64
	UserID   int64
	Text     string
	Username string
	Args     []string
}

// ParseCommand tokenizes an operator line. Text that is not a slash command
// yields CommandUnknown; a "/name@BotName" suffix is dropped.
func ParseCommand(chatID, userID int64, username, text string) *Command {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)

	cmd := &Command{
		Type:     CommandUnknown,
		ChatID:   chatID,
		UserID:   userID,
		Text:     text,
		Username: username,
	}

	if len(fields) == 0 {
		return cmd
	}

	name := strings.ToLower(fields[0])
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}

	cmd.Type = GetCommandType(name)
	cmd.Args = fields[1:]

	return cmd
}

// RawArgs returns the arguments joined by single spaces.
func (c *Command) RawArgs() string {
	fields := strings.Fields(c.Text)
	if len(fields) < 2 {
		return ""
	}

	return strings.Join(fields[1:], " ")
}

func GetCommandType(name string) CommandType {
	switch name {
	case "/start":
		return CommandStart
	case "/help":
		return CommandHelp
	case "/stop":
		return CommandStop
	case "/status":
		return CommandStatus
	case "/interval":
		return CommandInterval
	case "/setgroup":
		return CommandSetGroup
	case "/listgroups":
		return CommandListGroups
	case "/usegroup":
		return CommandUseGroup
	case "/setuser":
		return CommandSetUser
	case "/reset":
		return CommandReset
	case "/test":
		return CommandTest
	default:
		return CommandUnknown
	}
}
