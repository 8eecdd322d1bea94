// Package langid identifies the language a query is written in so answers
// can be translated back. Detection is best-effort: anything ambiguous
// falls back to English, the baseline language of the FAQ set.
package langid

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

const defaultLanguage = "English"

type Detector struct{}

func New() *Detector {
	return &Detector{}
}

// Detect returns the English name of the detected language ("Russian",
// "Hindi"). Short or unreliable input defaults to English rather than
// guessing.
func (d *Detector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return defaultLanguage
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return defaultLanguage
	}

	name := info.Lang.String()
	if name == "" {
		return defaultLanguage
	}
	return name
}
