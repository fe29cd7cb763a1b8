package recommend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripMarkdownFences removes ```json ... ``` or ``` ... ``` wrapping from text.
func stripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.Join(lines[1:end], "\n")
}

// extractArray returns the outermost [...] of text, ignoring prose around it.
func extractArray(text string) (string, error) {
	start := strings.Index(text, "[")
	if start == -1 {
		return "", fmt.Errorf("no JSON array found")
	}
	end := strings.LastIndex(text, "]")
	if end < start {
		return "", fmt.Errorf("no closing ] found")
	}
	return text[start : end+1], nil
}

// ParseRecommendations decodes a model reply that may be fenced or wrapped in prose.
// Entries without a title are dropped and at most ResultCount are kept.
func ParseRecommendations(raw string) ([]Recommendation, error) {
	body, err := extractArray(stripMarkdownFences(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse recommendations: %w (raw length: %d)", err, len(raw))
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(body), &recs); err != nil {
		preview := body
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return nil, fmt.Errorf("failed to parse recommendations: %w (text: %s)", err, preview)
	}

	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			continue
		}
		out = append(out, r)
		if len(out) == ResultCount {
			break
		}
	}
	return out, nil
}
