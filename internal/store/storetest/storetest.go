// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/store"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run exercises a backend against the content and card contract.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("get missing user", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("lazy creation", func(t *testing.T) { testLazyCreation(t, newStore(t)) })
	t.Run("idempotent add", func(t *testing.T) { testIdempotentAdd(t, newStore(t)) })
	t.Run("move", func(t *testing.T) { testMove(t, newStore(t)) })
	t.Run("remove", func(t *testing.T) { testRemove(t, newStore(t)) })
	t.Run("invalid mutation does not write", func(t *testing.T) { testInvalidNoWrite(t, newStore(t)) })
	t.Run("upsert", func(t *testing.T) { testUpsert(t, newStore(t)) })
	t.Run("attributes survive round trip", func(t *testing.T) { testAttributes(t, newStore(t)) })
	t.Run("concurrent adds", func(t *testing.T) { testConcurrentAdds(t, newStore(t)) })
	t.Run("cards", func(t *testing.T) { testCards(t, newStore(t)) })
	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ping(context.Background()); err != nil {
			t.Errorf("Ping() = %v", err)
		}
	})
}

func add(category domain.Category, list domain.ListName, id, title string) domain.ListMutation {
	return domain.ListMutation{
		Op:       domain.OpAdd,
		Category: category,
		List:     list,
		Item:     domain.Item{ID: id, Title: title},
	}
}

func mustApply(t *testing.T, s store.Store, userID string, m domain.ListMutation) domain.MutationResult {
	t.Helper()
	res, err := s.Apply(context.Background(), userID, m)
	if err != nil {
		t.Fatalf("Apply(%s %s.%s) error = %v", m.Op, m.Category, m.List, err)
	}
	return res
}

func mustGet(t *testing.T, s store.Store, userID string) *domain.UserContent {
	t.Helper()
	doc, err := s.GetByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetByUser(%q) error = %v", userID, err)
	}
	return doc
}

func testGetMissing(t *testing.T, s store.Store) {
	_, err := s.GetByUser(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByUser() error = %v, want ErrNotFound", err)
	}
	n, err := s.CountUsers(context.Background())
	if err != nil || n != 0 {
		t.Errorf("CountUsers() = %d, %v, want 0", n, err)
	}
}

func testLazyCreation(t *testing.T, s store.Store) {
	res := mustApply(t, s, "u1", add(domain.CategoryMovies, domain.ListPlanned, "m1", "Dune"))
	if !res.Created {
		t.Errorf("first add should create the document")
	}

	doc := mustGet(t, s, "u1")
	if doc.DocumentID == "" || doc.Version != 1 {
		t.Errorf("metadata = id %q version %d", doc.DocumentID, doc.Version)
	}
	for _, c := range domain.Categories() {
		for _, l := range domain.Lists() {
			items := *doc.Category(c).List(l)
			if items == nil {
				t.Errorf("%s.%s is nil after reload", c, l)
			}
			want := 0
			if c == domain.CategoryMovies && l == domain.ListPlanned {
				want = 1
			}
			if len(items) != want {
				t.Errorf("%s.%s has %d items, want %d", c, l, len(items), want)
			}
		}
	}

	n, err := s.CountUsers(context.Background())
	if err != nil || n != 1 {
		t.Errorf("CountUsers() = %d, %v, want 1", n, err)
	}
}

func testIdempotentAdd(t *testing.T, s store.Store) {
	mustApply(t, s, "u1", add(domain.CategoryAnime, domain.ListCompleted, "a1", "Frieren"))
	res := mustApply(t, s, "u1", add(domain.CategoryAnime, domain.ListCompleted, "a1", "Frieren"))
	if res.NeedsWrite() {
		t.Errorf("second add reported a write")
	}

	doc := mustGet(t, s, "u1")
	if n := len(doc.Anime.Completed); n != 1 {
		t.Errorf("anime.completed has %d entries, want 1", n)
	}
	if doc.Version != 1 {
		t.Errorf("Version = %d after no-op, want 1", doc.Version)
	}
}

func testMove(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustApply(t, s, "u1", add(domain.CategoryMovies, domain.ListPlanned, "m1", "Dune"))
	mustApply(t, s, "u1", add(domain.CategoryMovies, domain.ListPlanned, "m2", "Arrival"))

	mustApply(t, s, "u1", domain.ListMutation{
		Op: domain.OpMove, Category: domain.CategoryMovies,
		List: domain.ListPlanned, ToList: domain.ListInProgress, ItemID: "m1",
	})

	doc := mustGet(t, s, "u1")
	if len(doc.Movies.Planned) != 1 || doc.Movies.Planned[0].ID != "m2" {
		t.Errorf("movies.planned = %+v, want [m2]", doc.Movies.Planned)
	}
	if len(doc.Movies.InProgress) != 1 || doc.Movies.InProgress[0].Title != "Dune" {
		t.Errorf("movies.inProgress = %+v, want [m1 Dune]", doc.Movies.InProgress)
	}

	_, err := s.Apply(ctx, "u1", domain.ListMutation{
		Op: domain.OpMove, Category: domain.CategoryMovies,
		List: domain.ListPlanned, ToList: domain.ListCompleted, ItemID: "m1",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("move of absent item error = %v, want ErrNotFound", err)
	}

	_, err = s.Apply(ctx, "nobody", domain.ListMutation{
		Op: domain.OpMove, Category: domain.CategoryMovies,
		List: domain.ListPlanned, ToList: domain.ListCompleted, ItemID: "m1",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("move for missing user error = %v, want ErrNotFound", err)
	}
}

func testRemove(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustApply(t, s, "u1", add(domain.CategoryBooks, domain.ListPlanned, "b1", "Emma"))

	res := mustApply(t, s, "u1", domain.ListMutation{
		Op: domain.OpRemove, Category: domain.CategoryBooks, List: domain.ListPlanned, ItemID: "nope",
	})
	if res.NeedsWrite() || len(res.Content.Books.Planned) != 1 {
		t.Errorf("remove of absent id changed the list: %+v", res.Content.Books.Planned)
	}

	res = mustApply(t, s, "u1", domain.ListMutation{
		Op: domain.OpRemove, Category: domain.CategoryBooks, List: domain.ListPlanned, ItemID: "b1",
	})
	if len(res.Content.Books.Planned) != 0 {
		t.Errorf("result still holds removed item")
	}
	if doc := mustGet(t, s, "u1"); len(doc.Books.Planned) != 0 {
		t.Errorf("stored books.planned = %+v, want empty", doc.Books.Planned)
	}

	_, err := s.Apply(ctx, "nobody", domain.ListMutation{
		Op: domain.OpRemove, Category: domain.CategoryBooks, List: domain.ListPlanned, ItemID: "b1",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("remove for missing user error = %v, want ErrNotFound", err)
	}
}

func testInvalidNoWrite(t *testing.T, s store.Store) {
	ctx := context.Background()
	bad := []domain.ListMutation{
		add("music", domain.ListPlanned, "s1", "Song"),
		add(domain.CategorySongs, "favourites", "s1", "Song"),
		add(domain.CategorySongs, domain.ListPlanned, "", "Song"),
	}
	for _, m := range bad {
		if _, err := s.Apply(ctx, "u1", m); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Apply(%+v) error = %v, want ErrInvalidInput", m, err)
		}
	}
	if _, err := s.GetByUser(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("invalid mutation created a document: %v", err)
	}
}

func testUpsert(t *testing.T, s store.Store) {
	ctx := context.Background()

	doc := &domain.UserContent{UserID: "u1"}
	doc.Games.Completed = []domain.Item{{ID: "g1", Title: "Hades"}}
	if err := s.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	first := mustGet(t, s, "u1")
	if first.DocumentID == "" || first.Version != 1 || first.Anime.Planned == nil {
		t.Errorf("created document = %+v", first)
	}

	replacement := &domain.UserContent{UserID: "u1"}
	replacement.Songs.Planned = []domain.Item{{ID: "s1", Title: "Teardrop"}}
	if err := s.Upsert(ctx, replacement); err != nil {
		t.Fatalf("Upsert() replace error = %v", err)
	}
	second := mustGet(t, s, "u1")
	if second.DocumentID != first.DocumentID {
		t.Errorf("DocumentID changed on replace: %q -> %q", first.DocumentID, second.DocumentID)
	}
	if second.Version != 2 {
		t.Errorf("Version = %d, want 2", second.Version)
	}
	if len(second.Games.Completed) != 0 || len(second.Songs.Planned) != 1 {
		t.Errorf("replace did not overwrite lists: %+v", second)
	}

	dup := &domain.UserContent{UserID: "u1"}
	dup.Songs.Planned = []domain.Item{{ID: "s1", Title: "a"}, {ID: "s1", Title: "b"}}
	if err := s.Upsert(ctx, dup); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Upsert() with duplicate ids error = %v, want ErrInvalidInput", err)
	}
}

func testAttributes(t *testing.T, s store.Store) {
	var it domain.Item
	raw := `{"id":"tt1","title":"Dune","year":"2021","rating":8.1,"genre":["sci-fi","drama"]}`
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	mustApply(t, s, "u1", domain.ListMutation{
		Op: domain.OpAdd, Category: domain.CategoryMovies, List: domain.ListCompleted, Item: it,
	})

	got := mustGet(t, s, "u1").Movies.Completed[0]
	out, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"year", "rating", "genre"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("attribute %q lost: %s", key, out)
		}
	}
}

func testConcurrentAdds(t *testing.T, s store.Store) {
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers*2)
	for i := 0; i < writers; i++ {
		wg.Add(2)
		// every writer races to add the same item plus one of its own
		go func() {
			defer wg.Done()
			_, err := s.Apply(context.Background(), "u1", add(domain.CategoryShows, domain.ListPlanned, "shared", "Severance"))
			errs <- err
		}()
		go func(i int) {
			defer wg.Done()
			_, err := s.Apply(context.Background(), "u1", add(domain.CategoryShows, domain.ListPlanned, fmt.Sprintf("own-%d", i), "Own"))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Apply() error = %v", err)
		}
	}

	doc := mustGet(t, s, "u1")
	shared := 0
	for _, it := range doc.Shows.Planned {
		if it.ID == "shared" {
			shared++
		}
	}
	if shared != 1 {
		t.Errorf("shared item stored %d times, want 1", shared)
	}
	if n := len(doc.Shows.Planned); n != writers+1 {
		t.Errorf("shows.planned has %d items, want %d", n, writers+1)
	}
}

func testCards(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.GetCard(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetCard() error = %v, want ErrNotFound", err)
	}

	card := &domain.CardProfile{UserID: "u1", Username: "neo", Description: "hi", Theme: domain.CategoryAnime}
	if err := s.SaveCard(ctx, card); err != nil {
		t.Fatalf("SaveCard() error = %v", err)
	}
	got, err := s.GetCard(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCard() error = %v", err)
	}
	if got.Username != "neo" || got.Theme != domain.CategoryAnime || got.UpdatedAt.IsZero() {
		t.Errorf("GetCard() = %+v", got)
	}

	card.Theme = "music"
	if err := s.SaveCard(ctx, card); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SaveCard() with bad theme error = %v, want ErrInvalidInput", err)
	}
}
