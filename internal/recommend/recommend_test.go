package recommend

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
)

func TestParseRecommendations(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{
			name: "plain array",
			raw:  `[{"title":"Arrival","description":"d","reason":"r"}]`,
			want: []string{"Arrival"},
		},
		{
			name: "fenced",
			raw:  "```json\n[{\"title\":\"Arrival\"},{\"title\":\"Contact\"}]\n```",
			want: []string{"Arrival", "Contact"},
		},
		{
			name: "prose around the array",
			raw:  "Sure! Here you go:\n[{\"title\":\"Arrival\"}]\nEnjoy.",
			want: []string{"Arrival"},
		},
		{
			name: "untitled entries dropped",
			raw:  `[{"title":"  "},{"title":"Contact"}]`,
			want: []string{"Contact"},
		},
		{
			name: "capped at five",
			raw:  `[{"title":"1"},{"title":"2"},{"title":"3"},{"title":"4"},{"title":"5"},{"title":"6"}]`,
			want: []string{"1", "2", "3", "4", "5"},
		},
		{name: "no array", raw: `{"title":"Arrival"}`, wantErr: true},
		{name: "broken json", raw: `[{"title":}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecommendations(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRecommendations() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRecommendations() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d recommendations, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.Title != tt.want[i] {
					t.Errorf("[%d].Title = %q, want %q", i, r.Title, tt.want[i])
				}
			}
		})
	}
}

func TestSeedTitles(t *testing.T) {
	doc := domain.NewUserContent("u1", time.Now())
	for i := 0; i < 25; i++ {
		doc.Books.Completed = append(doc.Books.Completed, domain.Item{ID: fmt.Sprint(i), Title: fmt.Sprintf("Book %d", i)})
	}
	doc.Books.Planned = []domain.Item{{ID: "p", Title: "Planned"}}

	titles := SeedTitles(doc, domain.CategoryBooks)
	if len(titles) != MaxSeedTitles {
		t.Fatalf("len(SeedTitles) = %d, want %d", len(titles), MaxSeedTitles)
	}
	if titles[0] != "Book 0" || titles[19] != "Book 19" {
		t.Errorf("SeedTitles() not in insertion order: %v", titles)
	}
	if got := SeedTitles(doc, domain.CategoryGames); len(got) != 0 {
		t.Errorf("SeedTitles(games) = %v, want empty", got)
	}
	if got := SeedTitles(nil, domain.CategoryGames); got != nil {
		t.Errorf("SeedTitles(nil) = %v", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(domain.CategoryShows, []string{"Severance", "Dark"})
	for _, want := range []string{"tv shows", "- Severance\n", "- Dark\n", "JSON array", `"reason"`, "Recommend 5"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
