package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/store"
	"github.com/MrSnakeDoc/icebreaker/internal/store/storetest"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, _ := newTestStore(t)
		return s
	})
}

func TestApplyWritesContentAndIndex(t *testing.T) {
	s, mr := newTestStore(t)

	_, err := s.Apply(context.Background(), "u1", domain.ListMutation{
		Op: domain.OpAdd, Category: domain.CategoryMovies, List: domain.ListPlanned,
		Item: domain.Item{ID: "m1", Title: "Dune"},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !mr.Exists(ContentKey("u1")) {
		t.Errorf("content key %q not written", ContentKey("u1"))
	}
	ok, err := mr.SIsMember(AllUsersKey(), "u1")
	if err != nil || !ok {
		t.Errorf("user not indexed: %v %v", ok, err)
	}
}

func TestNoOpDoesNotWrite(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	m := domain.ListMutation{
		Op: domain.OpAdd, Category: domain.CategoryMovies, List: domain.ListPlanned,
		Item: domain.Item{ID: "m1", Title: "Dune"},
	}

	if _, err := s.Apply(ctx, "u1", m); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	before, _ := mr.Get(ContentKey("u1"))

	if _, err := s.Apply(ctx, "u1", m); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	after, _ := mr.Get(ContentKey("u1"))
	if before != after {
		t.Errorf("idempotent add rewrote the document")
	}
}

func TestStoreUnavailable(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	ctx := context.Background()
	if _, err := s.GetByUser(ctx, "u1"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("GetByUser() error = %v, want ErrStoreUnavailable", err)
	}
	_, err := s.Apply(ctx, "u1", domain.ListMutation{
		Op: domain.OpAdd, Category: domain.CategoryMovies, List: domain.ListPlanned,
		Item: domain.Item{ID: "m1", Title: "Dune"},
	})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("Apply() error = %v, want ErrStoreUnavailable", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("Ping() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestCorruptDocument(t *testing.T) {
	s, mr := newTestStore(t)
	if err := mr.Set(ContentKey("u1"), "{not json"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := s.GetByUser(context.Background(), "u1"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("GetByUser() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestExtractUserID(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: ContentKey("user_2abc"), want: "user_2abc"},
		{key: KeyPrefixContent, wantErr: true},
		{key: CardKey("u1"), wantErr: true},
	}
	for _, tt := range tests {
		got, err := ExtractUserID(tt.key)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ExtractUserID(%q) = %q, %v", tt.key, got, err)
		}
	}
}
