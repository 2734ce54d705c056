package dialog

import (
	"strings"

	"github.com/RagaBusiness/manoya-tg-bot/core/telegram/commands"
)

// Commands understood by the machine.
const (
	CmdStart   = "/start"
	CmdPay     = "/pay"
	CmdConnect = "/connect"
	CmdCancel  = "/cancel"
	CmdHelp    = "/help"
)

// Kind distinguishes free text from commands.
type Kind int

const (
	// KindText is any message that is not a whole-message command.
	KindText Kind = iota
	// KindCommand is a message consisting of exactly one command.
	KindCommand
)

// Input is one inbound chat event.
type Input struct {
	Kind    Kind
	Text    string
	Command string
}

// Text builds a text input.
func Text(s string) Input { return Input{Kind: KindText, Text: s} }

// Command builds a command input; name may omit the leading slash.
func Command(name string) Input {
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return Input{Kind: KindCommand, Command: name, Text: name}
}

// ParseInput classifies a message. Only a message that is exactly
// "/name" or "/name@bot" is a command; "please /pay" is text.
func ParseInput(text string) Input {
	if name, _, ok := commands.Parse(text); ok {
		return Input{Kind: KindCommand, Command: name, Text: strings.TrimSpace(text)}
	}
	return Text(strings.TrimSpace(text))
}

func (in Input) is(cmd string) bool {
	return in.Kind == KindCommand && in.Command == cmd
}
