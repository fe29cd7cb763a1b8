// Package store defines the persistence contract for user content documents and card profiles.
// Backends live in the redis, sqlite and memory subpackages.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
)

// ContentStore is keyed storage of one UserContent document per user.
type ContentStore interface {
	// GetByUser returns domain.ErrNotFound when the user has no document.
	GetByUser(ctx context.Context, userID string) (*domain.UserContent, error)
	// Upsert replaces or creates the whole document.
	Upsert(ctx context.Context, doc *domain.UserContent) error
	// Apply runs a list mutation as one atomic read-check-write.
	Apply(ctx context.Context, userID string, m domain.ListMutation) (domain.MutationResult, error)
}

// CardStore keeps the editable Ice Card fields next to the content document.
type CardStore interface {
	// GetCard returns domain.ErrNotFound when nothing was saved yet.
	GetCard(ctx context.Context, userID string) (*domain.CardProfile, error)
	SaveCard(ctx context.Context, card *domain.CardProfile) error
}

// Store is what the application wires in.
type Store interface {
	ContentStore
	CardStore

	Backend() string
	Ping(ctx context.Context) error
	CountUsers(ctx context.Context) (int64, error)
	Close() error
}

// MaxApplyAttempts bounds optimistic retries when concurrent writers collide.
const MaxApplyAttempts = 50

// ErrContention is returned when an optimistic mutation kept losing the race.
var ErrContention = errors.New("too many concurrent writers")

// Unavailable wraps a backend failure so callers can match domain.ErrStoreUnavailable
// while keeping the cause.
func Unavailable(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

// IsDomainError reports whether err is a validation or lookup outcome that must reach the
// caller unchanged rather than be reported as a store failure.
func IsDomainError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrUnauthorized)
}
