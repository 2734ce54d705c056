package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RagaBusiness/manoya-tg-bot/bots/manoya/messages"
)

// scripted answers with reply, or with the fallback when fail is set.
type scripted struct {
	reply   string
	fail    bool
	prompts []string
}

func (s *scripted) Complete(_ context.Context, prompt, fallback string) string {
	s.prompts = append(s.prompts, prompt)
	if s.fail {
		return fallback
	}
	return s.reply
}

const candles = "Sell handmade candles, ages 20-40, $15 each, want more sales"

func TestAnalyzeUsesModelAnswer(t *testing.T) {
	llm := &scripted{reply: "  Strong niche.  "}
	a := New(llm, messages.For(messages.LocaleEN))

	assert.Equal(t, "Strong niche.", a.Analyze(context.Background(), candles))
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], candles)
	assert.Contains(t, llm.prompts[0], "risks")
}

func TestAnalyzeFallsBackToSummary(t *testing.T) {
	a := New(&scripted{fail: true}, messages.For(messages.LocaleEN))
	got := a.Analyze(context.Background(), candles)
	assert.Equal(t, "Products: handmade candles | Audience: ages 20-40 | Prices: $15 | Goal: sales growth", got)

	a = New(&scripted{reply: "   "}, messages.For(messages.LocaleEN))
	assert.True(t, strings.HasPrefix(a.Analyze(context.Background(), candles), "Products: handmade candles"))
}

func TestGenerateQuestions(t *testing.T) {
	en := messages.For(messages.LocaleEN)

	a := New(&scripted{reply: ""}, en)
	assert.Equal(t, "", a.GenerateQuestions(context.Background(), candles))

	a = New(&scripted{reply: "What is your margin?\n"}, en)
	assert.Equal(t, "What is your margin?", a.GenerateQuestions(context.Background(), candles))

	a = New(&scripted{fail: true}, en)
	assert.Equal(t, en.FallbackQuestions, a.GenerateQuestions(context.Background(), candles))
}

func TestSummarizeRussian(t *testing.T) {
	ru := messages.For(messages.LocaleRU)
	got := Summarize("Продаю свечи ручной работы, аудитория: женщины 25-40, цена 1500 руб", ru)
	assert.Contains(t, got, "Продукты: свечи ручной работы")
	assert.Contains(t, got, "Аудитория: женщины 25-40")
	assert.Contains(t, got, "Цены: 1500 руб")
	assert.Contains(t, got, "Цели: рост продаж")
}

func TestSummarizeNothingFound(t *testing.T) {
	en := messages.For(messages.LocaleEN)
	assert.Equal(t, "Products: not specified | Audience: not specified | Prices: not specified | Goal: sales growth",
		Summarize("hello", en))
}

func TestSummarizeLimits(t *testing.T) {
	en := messages.For(messages.LocaleEN)
	got := Summarize("$1, $2, $3 and 4 usd", en)
	assert.Contains(t, got, "Prices: $1, $2 |")
}
