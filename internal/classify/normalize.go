package classify

import (
	"strings"
	"unicode"

	"github.com/hyperjump/kokoro/pkg/utils"
)

// NormalizeOutput reduces a raw model reply to a candidate category name: it
// lowercases, strips surrounding whitespace, quotes, punctuation and markdown
// emphasis, and collapses inner whitespace. It does not search for a category
// inside longer replies.
func NormalizeOutput(raw string) string {
	s := strings.ToLower(raw)
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return utils.CollapseWhitespace(s)
}

// Resolve maps a raw model reply to a member of the set. ok is false when the
// reply was not a member and the default category was returned instead.
func (s *CategorySet) Resolve(raw string) (category string, ok bool) {
	c := NormalizeOutput(raw)
	if s.Contains(c) {
		return c, true
	}
	return s.fallback, false
}
