package generator

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AI Breakthrough", "ai-breakthrough"},
		{"Hello, World!", "hello-world"},
		{"  lots   of    spaces  ", "lots-of-spaces"},
		{"already-a-slug", "already-a-slug"},
		{"What's Next for Web3?", "whats-next-for-web3"},
		{"--leading and trailing--", "leading-and-trailing"},
		{"Émoji 🚀 and accents", "moji-and-accents"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	inputs := []string{
		"AI Breakthrough: Transforming Technology in 2026",
		"Hello, World!",
		strings.Repeat("very long title ", 20),
		"--edge--case--",
	}
	for _, in := range inputs {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "Slugify must be idempotent on its own output")
	}
}

func TestSlugify_Invariants(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	inputs := []string{
		"Normal Title Here",
		strings.Repeat("word ", 60),
		"MIXED case WITH 123 numbers!!!",
		"hyphen-happy --- title",
	}
	for _, in := range inputs {
		s := Slugify(in)
		assert.LessOrEqual(t, len(s), 100, "slug must be at most 100 chars")
		if s != "" {
			assert.Regexp(t, valid, s, "only lowercase letters, digits, single hyphens; no edge hyphens")
		}
	}
}
