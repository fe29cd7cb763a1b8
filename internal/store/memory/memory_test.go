package memory

import (
	"context"
	"testing"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/store"
	"github.com/MrSnakeDoc/icebreaker/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return NewStore() })
}

func TestGetByUserReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Apply(ctx, "u1", domain.ListMutation{
		Op: domain.OpAdd, Category: domain.CategoryMovies, List: domain.ListPlanned,
		Item: domain.Item{ID: "m1", Title: "Dune"},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	doc, _ := s.GetByUser(ctx, "u1")
	doc.Movies.Planned = nil

	again, _ := s.GetByUser(ctx, "u1")
	if len(again.Movies.Planned) != 1 {
		t.Errorf("caller mutation leaked into the store")
	}
}
