package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonicalName title-cases a display name so that lookups by name are case
// insensitive. A Caser is stateful, so one is built per call.
func CanonicalName(name string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(name))
}
