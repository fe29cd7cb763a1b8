package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/events"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
	"github.com/MrSnakeDoc/icebreaker/internal/recommend"
	"github.com/MrSnakeDoc/icebreaker/internal/store/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fakeRecommender struct {
	calls  int
	titles []string
	err    error
}

func (f *fakeRecommender) Name() string { return "fake" }

func (f *fakeRecommender) Recommend(_ context.Context, _ domain.Category, titles []string) ([]recommend.Recommendation, error) {
	f.calls++
	f.titles = titles
	if f.err != nil {
		return nil, f.err
	}
	return []recommend.Recommendation{{Title: "Arrival", Description: "d", Reason: "r"}}, nil
}

func newTestService(rec recommend.Recommender) (*Service, *memory.Store, *recordingPublisher) {
	st := memory.NewStore()
	pub := &recordingPublisher{}
	return NewService(st, pub, rec, logger.NewNop()), st, pub
}

func dune() domain.Item { return domain.Item{ID: "m1", Title: "Dune"} }

func TestEndToEndScenario(t *testing.T) {
	svc, _, pub := newTestService(nil)
	ctx := context.Background()

	if _, err := svc.GetContent(ctx, "U"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetContent() before add error = %v, want ErrNotFound", err)
	}

	if err := svc.AddItem(ctx, "U", "movies", "planned", dune()); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	doc, err := svc.GetContent(ctx, "U")
	if err != nil {
		t.Fatalf("GetContent() error = %v", err)
	}
	if len(doc.Movies.Planned) != 1 || doc.Movies.Planned[0].Title != "Dune" {
		t.Fatalf("movies.planned = %+v", doc.Movies.Planned)
	}
	for _, c := range domain.Categories() {
		for _, l := range domain.Lists() {
			if c == domain.CategoryMovies && l == domain.ListPlanned {
				continue
			}
			if n := len(*doc.Category(c).List(l)); n != 0 {
				t.Errorf("%s.%s has %d items", c, l, n)
			}
		}
	}

	if err := svc.MoveItem(ctx, "U", "movies", "planned", "inProgress", "m1"); err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
	doc, _ = svc.GetContent(ctx, "U")
	if len(doc.Movies.Planned) != 0 || len(doc.Movies.InProgress) != 1 {
		t.Fatalf("after move movies = %+v", doc.Movies)
	}

	updated, err := svc.RemoveItem(ctx, "U", "movies", "inProgress", "m1")
	if err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if len(updated.Movies.InProgress) != 0 {
		t.Fatalf("after remove movies.inProgress = %+v", updated.Movies.InProgress)
	}

	want := []string{events.TypeAdd, events.TypeMove, events.TypeRemove}
	if got := pub.types(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("published %v, want %v", got, want)
	}
}

func TestNoOpsDoNotPublish(t *testing.T) {
	svc, _, pub := newTestService(nil)
	ctx := context.Background()

	_ = svc.AddItem(ctx, "U", "movies", "planned", dune())
	_ = svc.AddItem(ctx, "U", "movies", "planned", dune())
	if _, err := svc.RemoveItem(ctx, "U", "movies", "completed", "zzz"); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if err := svc.MoveItem(ctx, "U", "movies", "planned", "planned", "m1"); err != nil {
		t.Fatalf("MoveItem() same list error = %v", err)
	}

	if got := pub.types(); len(got) != 1 {
		t.Errorf("published %v, want a single add", got)
	}
}

func TestMutationErrors(t *testing.T) {
	svc, st, _ := newTestService(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{name: "add without identity", call: func() error { return svc.AddItem(ctx, "", "movies", "planned", dune()) }, want: domain.ErrUnauthorized},
		{name: "add to music", call: func() error { return svc.AddItem(ctx, "U", "music", "planned", dune()) }, want: domain.ErrInvalidInput},
		{name: "add to unknown list", call: func() error { return svc.AddItem(ctx, "U", "movies", "later", dune()) }, want: domain.ErrInvalidInput},
		{name: "add without id", call: func() error { return svc.AddItem(ctx, "U", "movies", "planned", domain.Item{Title: "x"}) }, want: domain.ErrInvalidInput},
		{name: "move without document", call: func() error { return svc.MoveItem(ctx, "U", "movies", "planned", "completed", "m1") }, want: domain.ErrNotFound},
		{name: "move bad target", call: func() error { return svc.MoveItem(ctx, "U", "movies", "planned", "done", "m1") }, want: domain.ErrInvalidInput},
		{name: "move without item id", call: func() error { return svc.MoveItem(ctx, "U", "movies", "planned", "completed", "") }, want: domain.ErrInvalidInput},
		{name: "remove without document", call: func() error { _, err := svc.RemoveItem(ctx, "U", "movies", "planned", "m1"); return err }, want: domain.ErrNotFound},
		{name: "remove without identity", call: func() error { _, err := svc.RemoveItem(ctx, "", "movies", "planned", "m1"); return err }, want: domain.ErrUnauthorized},
		{name: "get without identity", call: func() error { _, err := svc.GetContent(ctx, ""); return err }, want: domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if n, _ := st.CountUsers(ctx); n != 0 {
		t.Errorf("failed mutations created %d documents", n)
	}
}

func TestPublicProfile(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	if _, err := svc.PublicProfile(ctx, "U"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("PublicProfile() error = %v, want ErrNotFound", err)
	}

	_ = svc.AddItem(ctx, "U", "anime", "completed", domain.Item{ID: "a1", Title: "Mushishi"})
	p, err := svc.PublicProfile(ctx, "U")
	if err != nil {
		t.Fatalf("PublicProfile() error = %v", err)
	}
	if p.UserID != "U" || len(p.Anime.Completed) != 1 {
		t.Errorf("PublicProfile() = %+v", p)
	}
}

func TestProfileSummary(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		_ = svc.AddItem(ctx, "U", "books", "completed", domain.Item{ID: fmt.Sprint(i), Title: "Book"})
	}

	sum, err := svc.ProfileSummary(ctx, "U")
	if err != nil {
		t.Fatalf("ProfileSummary() error = %v", err)
	}
	if sum.Stats.Total != 6 || sum.Stats.TopCategory != domain.CategoryBooks {
		t.Errorf("stats = %+v", sum.Stats)
	}
	if n := len(sum.Preview[domain.CategoryBooks].Completed); n != PreviewSize {
		t.Errorf("preview has %d items, want %d", n, PreviewSize)
	}
}

func TestStatsWithoutDocument(t *testing.T) {
	svc, _, _ := newTestService(nil)
	s, err := svc.Stats(context.Background(), "U")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.Total != 0 || s.Rank != "Noob List" {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCard(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()
	_ = svc.AddItem(ctx, "U", "games", "completed", domain.Item{ID: "g1", Title: "Hades"})

	view, err := svc.Card(ctx, "U", "neo")
	if err != nil {
		t.Fatalf("Card() error = %v", err)
	}
	if view.Card.Username != "neo" || view.Card.Theme != domain.CategoryGames || view.ProfilePath != "/profile/U" {
		t.Errorf("Card() = %+v", view)
	}

	saved, err := svc.SaveCard(ctx, "U", domain.CardProfile{Username: "trinity", Description: "mine", Theme: domain.CategoryBooks})
	if err != nil {
		t.Fatalf("SaveCard() error = %v", err)
	}
	if saved.UserID != "U" {
		t.Errorf("SaveCard() did not bind the caller: %+v", saved)
	}

	view, _ = svc.Card(ctx, "U", "neo")
	if view.Card.Username != "trinity" || view.Card.Theme != domain.CategoryBooks || view.Card.Description != "mine" {
		t.Errorf("Card() after save = %+v", view.Card)
	}

	if _, err := svc.SaveCard(ctx, "U", domain.CardProfile{Theme: "music"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SaveCard() bad theme error = %v", err)
	}
}

func TestCard_SavedWithoutUsername(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	if _, err := svc.SaveCard(ctx, "U", domain.CardProfile{Description: "mine", Theme: domain.CategoryBooks}); err != nil {
		t.Fatalf("SaveCard() error = %v", err)
	}

	view, err := svc.Card(ctx, "U", "neo")
	if err != nil {
		t.Fatalf("Card() error = %v", err)
	}
	if view.Card.Username != "neo" || view.Card.Description != "mine" || view.Card.Theme != domain.CategoryBooks {
		t.Errorf("Card() = %+v, want saved fields with the identity username", view.Card)
	}

	// without an identity name the default still applies
	view, _ = svc.Card(ctx, "U", "")
	if view.Card.Username != domain.DefaultUsername {
		t.Errorf("Card() username = %q, want %q", view.Card.Username, domain.DefaultUsername)
	}
}

func TestRecommendations(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		svc, _, _ := newTestService(nil)
		if _, err := svc.Recommendations(ctx, "U", "movies"); !errors.Is(err, recommend.ErrDisabled) {
			t.Errorf("error = %v, want ErrDisabled", err)
		}
	})

	t.Run("nothing completed skips the model", func(t *testing.T) {
		rec := &fakeRecommender{}
		svc, _, _ := newTestService(rec)
		_ = svc.AddItem(ctx, "U", "movies", "planned", dune())

		got, err := svc.Recommendations(ctx, "U", "movies")
		if err != nil {
			t.Fatalf("Recommendations() error = %v", err)
		}
		if got == nil || len(got) != 0 || rec.calls != 0 {
			t.Errorf("got %v with %d calls, want empty and no call", got, rec.calls)
		}
	})

	t.Run("completed titles are sent", func(t *testing.T) {
		rec := &fakeRecommender{}
		svc, _, _ := newTestService(rec)
		_ = svc.AddItem(ctx, "U", "movies", "completed", dune())

		got, err := svc.Recommendations(ctx, "U", "movies")
		if err != nil {
			t.Fatalf("Recommendations() error = %v", err)
		}
		if len(got) != 1 || rec.calls != 1 || fmt.Sprint(rec.titles) != "[Dune]" {
			t.Errorf("got %v, calls %d, titles %v", got, rec.calls, rec.titles)
		}
	})

	t.Run("invalid category", func(t *testing.T) {
		svc, _, _ := newTestService(&fakeRecommender{})
		if _, err := svc.Recommendations(ctx, "U", "music"); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("model failure", func(t *testing.T) {
		svc, _, _ := newTestService(&fakeRecommender{err: errors.New("quota")})
		_ = svc.AddItem(ctx, "U", "movies", "completed", dune())
		if _, err := svc.Recommendations(ctx, "U", "movies"); err == nil {
			t.Error("Recommendations() = nil error, want failure")
		}
	})
}
