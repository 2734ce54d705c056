package messages

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForDefaultsToEnglish(t *testing.T) {
	assert.Equal(t, LocaleEN, For("").Locale)
	assert.Equal(t, LocaleEN, For("de").Locale)
	assert.Equal(t, LocaleRU, For(" RU ").Locale)
	assert.True(t, Supported(LocaleRU))
	assert.False(t, Supported("de"))
}

func TestCatalogsComplete(t *testing.T) {
	for locale, c := range catalogs {
		v := reflect.ValueOf(c)
		for i := 0; i < v.NumField(); i++ {
			assert.NotEmpty(t, strings.TrimSpace(v.Field(i).String()), "%s: %s is empty", locale, v.Type().Field(i).Name)
		}
		assert.Equal(t, 2, strings.Count(c.AnalysisQuestions, "%s"), locale)
		assert.Equal(t, 4, strings.Count(c.FallbackSummary, "%s"), locale)
		assert.Contains(t, c.AnalysisPay, "/pay", locale)
	}
}
