package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
)

// Store keeps documents in process memory.
// Used for local development and tests; nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	contents map[string]*domain.UserContent // userID -> document
	cards    map[string]*domain.CardProfile // userID -> card
	now      func() time.Time
}

// NewStore creates an empty memory store
func NewStore() *Store {
	return &Store{
		contents: make(map[string]*domain.UserContent),
		cards:    make(map[string]*domain.CardProfile),
		now:      time.Now,
	}
}

func (s *Store) Backend() string { return "memory" }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

// CountUsers returns the number of stored documents
func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.contents)), nil
}

// GetByUser returns a copy of the user's document
func (s *Store) GetByUser(_ context.Context, userID string) (*domain.UserContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.contents[userID]
	if !ok {
		return nil, fmt.Errorf("%w: no content for user %q", domain.ErrNotFound, userID)
	}
	return doc.Clone(), nil
}

// Upsert replaces the whole document
func (s *Store) Upsert(_ context.Context, doc *domain.UserContent) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := doc.Clone()
	next.Supersede(s.contents[doc.UserID], s.now())
	s.contents[doc.UserID] = next
	*doc = *next.Clone()
	return nil
}

// Apply runs the mutation under the write lock
func (s *Store) Apply(_ context.Context, userID string, m domain.ListMutation) (domain.MutationResult, error) {
	if err := m.Validate(); err != nil {
		return domain.MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := domain.ApplyMutation(s.contents[userID], userID, m, s.now())
	if err != nil {
		return domain.MutationResult{}, err
	}
	if res.NeedsWrite() {
		s.contents[userID] = res.Content.Clone()
	}
	return res, nil
}

// GetCard returns a copy of the saved card
func (s *Store) GetCard(_ context.Context, userID string) (*domain.CardProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[userID]
	if !ok {
		return nil, fmt.Errorf("%w: no card for user %q", domain.ErrNotFound, userID)
	}
	out := *card
	return &out, nil
}

// SaveCard upserts the card
func (s *Store) SaveCard(_ context.Context, card *domain.CardProfile) error {
	if err := card.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card.UpdatedAt = s.now().UTC()
	stored := *card
	s.cards[card.UserID] = &stored
	return nil
}
