// Package e2e runs the whole pipeline (corpus file, build, index, HTTP analyze)
// against a synthetic labeled corpus.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kokoro/internal/config"
	"github.com/hyperjump/kokoro/internal/models"
)

// vocabulary gives each category words no other category uses.
var vocabulary = map[string][]string{
	"depression":           {"hopeless", "empty", "numb", "worthless", "tearful", "bleak"},
	"anxiety":              {"panic", "racing", "dread", "trembling", "restless", "nervous"},
	"stress":               {"deadlines", "overloaded", "pressure", "exhausted", "workload", "tense"},
	"normal":               {"sunny", "picnic", "relaxed", "cheerful", "garden", "weekend"},
	"relationship":         {"partner", "breakup", "jealous", "marriage", "argument", "divorce"},
	"addiction":            {"craving", "relapse", "drinking", "gambling", "withdrawal", "sober"},
	"abuse":                {"bruises", "threatened", "controlling", "yelled", "unsafe", "hit"},
	"bipolar":              {"manic", "euphoric", "sleepless", "spending", "grandiose", "crash"},
	"personality disorder": {"abandonment", "unstable", "identity", "impulsive", "splitting", "mirror"},
}

// QueryTestCase is a text and the category the pipeline must assign to it.
type QueryTestCase struct {
	Text     string
	Expected string
}

// Corpus holds labeled statements and classification test cases.
type Corpus struct {
	Statements []models.LabeledStatement
	TestCases  []QueryTestCase
}

// BuildCorpus returns perCategory statements for every default category and
// one test case per category. Statement k of a category uses three consecutive
// vocabulary words plus a unique filler word; the test text uses the first four.
func BuildCorpus(perCategory int) *Corpus {
	c := &Corpus{}
	n := 0
	for _, category := range config.DefaultCategories {
		words := vocabulary[category]
		for k := 0; k < perCategory; k++ {
			picked := []string{words[k%6], words[(k+1)%6], words[(k+2)%6]}
			c.Statements = append(c.Statements, models.LabeledStatement{
				Category:  category,
				Statement: fmt.Sprintf("i feel %s lately note%d", strings.Join(picked, " "), n),
			})
			n++
		}
		c.TestCases = append(c.TestCases, QueryTestCase{
			Text:     "Honestly I am " + strings.Join(words[:4], " and ") + ".",
			Expected: category,
		})
	}
	return c
}

// KnowledgeJSON returns a knowledge base with one tip per category.
func KnowledgeJSON() string {
	var parts []string
	for _, category := range config.DefaultCategories {
		parts = append(parts, fmt.Sprintf("%q: {\"tips\": [%q]}", category, "tip for "+category))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
