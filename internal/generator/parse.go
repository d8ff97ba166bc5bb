package generator

import (
	"encoding/json"
	"strings"

	"github.com/trendwise/trendbot/pkg/llm"
)

// draftPayload mirrors the JSON object the model is asked to produce.
type draftPayload struct {
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	ReadTime int      `json:"readTime"`
}

// ParseDraft extracts the first balanced JSON object from free-form model
// output and maps it onto a Draft. The boolean reports whether the model
// actually followed the schema; false means the caller must use the
// template fallback. A parse is rejected when title or content is missing.
func ParseDraft(raw string) (Draft, bool) {
	obj := llm.ExtractJSONObject(raw)
	if obj == "" {
		return Draft{}, false
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return Draft{}, false
	}

	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Content) == "" {
		return Draft{}, false
	}

	draft := Draft{
		Title:       strings.TrimSpace(payload.Title),
		Excerpt:     strings.TrimSpace(payload.Excerpt),
		Content:     payload.Content,
		Tags:        payload.Tags,
		ReadMinutes: payload.ReadTime,
	}
	if draft.Excerpt == "" {
		draft.Excerpt = firstSentence(draft.Content)
	}
	if draft.ReadMinutes <= 0 {
		draft.ReadMinutes = EstimateReadMinutes(draft.Content)
	}
	return draft, true
}

func firstSentence(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.IndexAny(content, ".!?"); idx > 0 && idx < 240 {
		return content[:idx+1]
	}
	if len(content) > 240 {
		return content[:240]
	}
	return content
}
