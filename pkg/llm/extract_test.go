package llm

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"leading prose", "Sure! Here is the article:\n{\"title\":\"x\"}", `{"title":"x"}`},
		{"trailing prose", `{"title":"x"} hope that helps`, `{"title":"x"}`},
		{"markdown fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"nested objects", `{"a":{"b":{"c":1}}}`, `{"a":{"b":{"c":1}}}`},
		{"brace inside string", `{"content":"use { and } freely"}`, `{"content":"use { and } freely"}`},
		{"escaped quote", `{"content":"she said \"hi {\" ok"}`, `{"content":"she said \"hi {\" ok"}`},
		{"unterminated", `{"a":1`, ""},
		{"no object", "nothing here", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
