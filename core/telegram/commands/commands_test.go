package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		name    string
		botName string
		ok      bool
	}{
		{"/start", "/start", "", true},
		{"  /PAY  ", "/pay", "", true},
		{"/cancel@manoya_bot", "/cancel", "manoya_bot", true},
		{"please /pay", "", "", false},
		{"/pay now", "", "", false},
		{"pay", "", "", false},
		{"/", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		name, botName, ok := Parse(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.name, name, tc.in)
		assert.Equal(t, tc.botName, botName, tc.in)
	}
}
