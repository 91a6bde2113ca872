package textid

import (
	"strings"
	"testing"
)

func TestTextID(t *testing.T) {
	a := TextID("I feel  anxious")
	b := TextID("  i feel anxious\n")
	if a != b {
		t.Errorf("case and whitespace variants should share an ID: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, prefix) {
		t.Errorf("ID should start with %q: %s", prefix, a)
	}
	if len(a) != len(prefix)+64 {
		t.Errorf("unexpected ID length %d", len(a))
	}
	if TextID("something else") == a {
		t.Error("different texts should have different IDs")
	}
	if strings.Contains(a, "anxious") {
		t.Error("ID must not contain the text")
	}
}
