package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CommandName names an operation the dashboard asks the backend to perform.
type CommandName string

const (
	CommandInit   CommandName = "init"
	CommandStart  CommandName = "start"
	CommandStop   CommandName = "stop"
	CommandRemove CommandName = "remove"
	CommandKill   CommandName = "kill"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is an outbound frame from the dashboard to the backend.
type Command struct {
	Command CommandName `json:"command"`
	Data    string      `json:"data,omitempty"`
}

// InitCommand is sent once when a session opens.
func InitCommand() Command {
	return Command{Command: CommandInit}
}

// Encode renders the command in the frame layout the backend expects,
// e.g. {"command":"start", "data": "c1"}. Both values are JSON-quoted so an
// ID containing quotes cannot break the frame.
func (c Command) Encode() []byte {
	if c.Command == CommandInit {
		return []byte(`{"command":"init"}`)
	}
	return []byte(fmt.Sprintf(`{"command":%s, "data": %s}`, quote(string(c.Command)), quote(c.Data)))
}

// DecodeCommand parses an inbound command frame on the backend side.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("failed to parse command: %w", err)
	}
	switch cmd.Command {
	case CommandInit, CommandStart, CommandStop, CommandRemove, CommandKill:
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Command)
	}
}

func quote(s string) string {
	// Marshaling a string cannot fail.
	b, _ := json.Marshal(s)
	return string(b)
}
