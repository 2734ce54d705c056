// Package commands describes bot commands and recognises them in message text.
package commands

import (
	"regexp"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Hidden      bool
	Aliases     []string
}

// wholeCommandRe matches a message that consists of a single command,
// optionally addressed to a bot: "/pay" or "/pay@manoya_bot".
var wholeCommandRe = regexp.MustCompile(`^/(\w+)(?:@(\w+))?$`)

// Parse reports the command name (with leading slash, lower case) and the
// addressed bot username when text is exactly one command. Commands inside
// running text are not recognised.
func Parse(text string) (name, botName string, ok bool) {
	m := wholeCommandRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", "", false
	}
	return "/" + strings.ToLower(m[1]), m[2], true
}
