package imagetool

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const titleMaxWords = 8

// Title derives a short human-readable label from a prompt for artifact
// listings and metadata. The full prompt is kept verbatim elsewhere.
func Title(prompt string) string {
	words := strings.Fields(strings.TrimSpace(prompt))
	if len(words) == 0 {
		return ""
	}
	if len(words) > titleMaxWords {
		words = words[:titleMaxWords]
	}
	c := cases.Title(language.English)
	return c.String(strings.Join(words, " "))
}
