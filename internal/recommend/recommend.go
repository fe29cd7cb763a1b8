// Package recommend asks a text-generation model for titles similar to what a user completed.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
)

const (
	// MaxSeedTitles caps how many completed titles go into one prompt.
	MaxSeedTitles = 20
	// ResultCount is how many recommendations are requested.
	ResultCount = 5
)

// ErrDisabled is returned when no model is configured.
var ErrDisabled = errors.New("recommendations are not configured")

// Recommendation is one suggested title.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// Recommender produces suggestions from a list of titles the user finished.
type Recommender interface {
	Recommend(ctx context.Context, category domain.Category, titles []string) ([]Recommendation, error)
	Name() string
}

// SeedTitles returns the first MaxSeedTitles non-empty completed titles of a category.
func SeedTitles(doc *domain.UserContent, category domain.Category) []string {
	if doc == nil {
		return nil
	}
	cl := doc.Category(category)
	if cl == nil {
		return nil
	}

	titles := make([]string, 0, MaxSeedTitles)
	for _, it := range cl.Completed {
		if len(titles) == MaxSeedTitles {
			break
		}
		if t := strings.TrimSpace(it.Title); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// BuildPrompt renders the instruction sent to the model.
func BuildPrompt(category domain.Category, titles []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A user has completed these %s:\n", strings.ToLower(category.DisplayName()))
	for _, t := range titles {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	fmt.Fprintf(&b, "\nRecommend %d other %s they have not listed that match their taste. ", ResultCount, strings.ToLower(category.DisplayName()))
	b.WriteString(`Reply with only a JSON array of objects with the keys "title", "description" and "reason". `)
	b.WriteString("Keep each description and reason to one sentence.")
	return b.String()
}
