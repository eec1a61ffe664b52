// Package names builds the display names written to the registry.
package names

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/moh-tz/hfrsync/pkg/constants"
)

// Title strips double quotes, collapses runs of whitespace and title-cases
// every word, so `kombo "A"  ward` becomes "Kombo A Ward".
func Title(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	caser := cases.Title(language.Und)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// Compose joins the non-empty parts with the level separator and
// title-cases the result.
func Compose(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return Title(strings.Join(kept, constants.NameSeparator))
}

// Same reports whether two names are equal after trimming.
func Same(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// SameFold is Same ignoring case.
func SameFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
