package classify

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kokoro/internal/models"
)

// BuildPrompt renders the classification prompt: the assistant role, the user
// text verbatim, the retrieved exemplars with their categories in retrieval
// order, the permitted categories, and the instruction to answer with one name.
func BuildPrompt(text string, retrieved []models.ScoredRecord, categories []string) string {
	var b strings.Builder
	b.WriteString("You are a helpful and compassionate AI mental health assistant.\n\n")
	b.WriteString("Given this user message:\n")
	fmt.Fprintf(&b, "\"%s\"\n\n", text)
	b.WriteString("And similar expressions:\n")
	if len(retrieved) == 0 {
		b.WriteString("(none)\n")
	}
	for _, r := range retrieved {
		fmt.Fprintf(&b, "- \"%s\" (Category: %s)\n", strings.TrimSpace(r.Statement), r.Category)
	}
	b.WriteString("\nClassify the user's concern into exactly one of these categories:\n")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString(".\n\nOnly return the category name.\n")
	return b.String()
}
