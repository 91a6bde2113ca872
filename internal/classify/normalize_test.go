package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kokoro/internal/config"
)

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Depression.", "depression"},
		{"  ANXIETY\n", "anxiety"},
		{`"stress"`, "stress"},
		{"**Bipolar**", "bipolar"},
		{"`normal`", "normal"},
		{"Personality   Disorder!", "personality disorder"},
		{"I am not sure", "i am not sure"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeOutput(tt.raw))
		})
	}
}

func TestCategorySet_Resolve(t *testing.T) {
	set, err := NewCategorySet(config.DefaultCategories, "normal")
	require.NoError(t, err)

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"Depression.", "depression", true},
		{"'Relationship'", "relationship", true},
		{"I am not sure", "normal", false},
		{"The category is: depression", "normal", false},
		{"grief", "normal", false},
		{"", "normal", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := set.Resolve(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestNewCategorySet(t *testing.T) {
	set, err := NewCategorySet([]string{" Anxiety", "stress", "anxiety", "", "Normal"}, "NORMAL")
	require.NoError(t, err)
	assert.Equal(t, []string{"anxiety", "stress", "normal"}, set.Names())
	assert.Equal(t, "normal", set.Default())
	assert.True(t, set.Contains("stress"))

	names := set.Names()
	names[0] = "mutated"
	assert.Equal(t, "anxiety", set.Names()[0], "Names must return a copy")

	_, err = NewCategorySet([]string{"anxiety"}, "normal")
	assert.Error(t, err)
	_, err = NewCategorySet(nil, "normal")
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("I can't focus\nat all", nil, []string{"anxiety", "normal"})
	assert.Contains(t, p, "\"I can't focus\nat all\"")
	assert.Contains(t, p, "anxiety, normal.")
	assert.Contains(t, p, "Only return the category name.")
}
