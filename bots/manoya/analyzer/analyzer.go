// Package analyzer turns a free-text business description into an analysis
// and clarifying questions using the LLM gateway.
package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/RagaBusiness/manoya-tg-bot/bots/manoya/messages"
	"github.com/RagaBusiness/manoya-tg-bot/core/llm"
)

// Analyzer builds prompts in the catalog language and forwards them to the LLM.
type Analyzer struct {
	llm  llm.Completer
	msgs messages.Catalog
}

// New returns an Analyzer using completer and the texts of msgs.
func New(completer llm.Completer, msgs messages.Catalog) *Analyzer {
	return &Analyzer{llm: completer, msgs: msgs}
}

// Analyze returns a business analysis. When the LLM is unavailable, or
// answers with nothing, a heuristic summary of the description is returned.
func (a *Analyzer) Analyze(ctx context.Context, description string) string {
	fallback := Summarize(description, a.msgs)
	out := strings.TrimSpace(a.llm.Complete(ctx, fmt.Sprintf(a.msgs.AnalysisPrompt, description), fallback))
	if out == "" {
		return fallback
	}
	return out
}

// GenerateQuestions returns up to three clarifying questions, or "" when the
// model sees nothing to clarify. On failure the static questions are used.
func (a *Analyzer) GenerateQuestions(ctx context.Context, description string) string {
	return strings.TrimSpace(a.llm.Complete(ctx, fmt.Sprintf(a.msgs.QuestionsPrompt, description), a.msgs.FallbackQuestions))
}

const (
	maxProducts  = 3
	maxAudiences = 2
	maxPrices    = 2
)

var (
	productRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:sell(?:ing|s)?|products?|services?|offer(?:ing|s)?)\b[:\s]+([\p{L}\- ]{2,40}?)\s*(?:[,.;!\n]|$)`),
		regexp.MustCompile(`(?i)(?:прода(?:ю|ём|ем)|продукт\p{L}*|услуг\p{L}*)[:\s]+([\p{L}\- ]{2,40}?)\s*(?:[,.;!\n]|$)`),
	}
	audienceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(ages?\s*\d{1,2}\s*[-–]\s*\d{1,2})`),
		regexp.MustCompile(`(?i)(возраст\p{L}*\s*\d{1,2}\s*[-–]\s*\d{1,2})`),
		regexp.MustCompile(`(?i)\b(?:audience|customers|clients)\b(?:\s+(?:is|are))?[:\s]+([\p{L}\d\- ]{2,40}?)\s*(?:[,.;!\n]|$)`),
		regexp.MustCompile(`(?i)(?:аудитори\p{L}*|клиент\p{L}*)[:\s]+([\p{L}\d\- ]{2,40}?)\s*(?:[,.;!\n]|$)`),
	}
	priceRe = regexp.MustCompile(`(?i)[$€£₽]\s?\d+(?:[.,]\d+)?|\d+(?:[.,]\d+)?\s?(?:usd|eur|rub|руб\p{L}*|₽|dollars?|фунт\p{L}*)`)
)

// Summarize extracts products, audience and prices from description with
// regular expressions. Missing parts are reported as not specified.
func Summarize(description string, msgs messages.Catalog) string {
	products := collect(description, productRes, maxProducts)
	audience := collect(description, audienceRes, maxAudiences)
	prices := limit(priceRe.FindAllString(description, -1), maxPrices)
	return fmt.Sprintf(msgs.FallbackSummary,
		joinOr(products, msgs.NotSpecified),
		joinOr(audience, msgs.NotSpecified),
		joinOr(prices, msgs.NotSpecified),
		msgs.FallbackGoal,
	)
}

func collect(text string, res []*regexp.Regexp, max int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v := strings.TrimSpace(m[1])
			key := strings.ToLower(v)
			if v == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
			if len(out) == max {
				return out
			}
		}
	}
	return out
}

func limit(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
