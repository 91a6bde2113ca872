// Package textid derives a stable, non-reversible identifier for user text so it can be logged and stored without the text itself.
package textid

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/hyperjump/kokoro/pkg/utils"
)

const prefix = "text:"

// TextID returns a stable ID for text. Texts differing only in case or whitespace share an ID.
func TextID(text string) string {
	normalized := strings.ToLower(utils.CollapseWhitespace(text))
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}
