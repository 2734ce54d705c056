// Package format prepares plain text for Telegram messages.
package format

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageRunes is the Telegram limit for a single text message.
const MaxMessageRunes = 4096

// MaskSecret keeps the last four runes of s and replaces the rest with '*'.
func MaskSecret(s string) string {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	r := []rune(s)
	return strings.Repeat("*", n-4) + string(r[n-4:])
}

// SplitMessage cuts text into chunks of at most limit runes, preferring to
// break after a newline or a space. Empty input yields no chunks.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageRunes
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	r := []rune(text)
	var out []string
	for len(r) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if r[i-1] == '\n' || r[i-1] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimRight(string(r[:cut]), " \n"))
		r = r[cut:]
	}
	if rest := strings.TrimSpace(string(r)); rest != "" {
		out = append(out, string(r))
	}
	return out
}
