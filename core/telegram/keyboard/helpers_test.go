package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyButtons(t *testing.T) {
	m := ReplyButtons([]string{"/pay"}, nil, []string{"/help", "/cancel"})
	require.Len(t, m.ReplyKeyboard, 2)
	assert.True(t, m.ResizeKeyboard)
	assert.Equal(t, "/pay", m.ReplyKeyboard[0][0].Text)
	assert.Equal(t, "/cancel", m.ReplyKeyboard[1][1].Text)
}

func TestURLButton(t *testing.T) {
	m := URLButton("Pay", "https://checkout.example/s/1")
	require.Len(t, m.InlineKeyboard, 1)
	require.Len(t, m.InlineKeyboard[0], 1)
	assert.Equal(t, "Pay", m.InlineKeyboard[0][0].Text)
	assert.Equal(t, "https://checkout.example/s/1", m.InlineKeyboard[0][0].URL)
}

func TestRemoveKeyboard(t *testing.T) {
	assert.True(t, RemoveKeyboard().RemoveKeyboard)
}
