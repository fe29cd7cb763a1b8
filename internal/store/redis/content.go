package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/store"
)

// GetByUser retrieves a user's document
func (s *Store) GetByUser(ctx context.Context, userID string) (*domain.UserContent, error) {
	doc, err := readContent(ctx, s.client, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: no content for user %q", domain.ErrNotFound, userID)
	}
	return doc, nil
}

// Upsert replaces the whole document, keeping its id and advancing its version
func (s *Store) Upsert(ctx context.Context, doc *domain.UserContent) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	key := ContentKey(doc.UserID)
	var next *domain.UserContent

	txf := func(tx *redis.Tx) error {
		prev, err := readContent(ctx, tx, doc.UserID)
		if err != nil {
			return err
		}
		next = doc.Clone()
		next.Supersede(prev, s.now())
		return writeContent(ctx, tx, next)
	}

	if err := s.watch(ctx, key, txf); err != nil {
		return err
	}
	*doc = *next
	return nil
}

// Apply runs the mutation inside a WATCH/MULTI/EXEC transaction on the user's key.
// A concurrent write to the same key aborts EXEC and the whole read-check-write is retried.
func (s *Store) Apply(ctx context.Context, userID string, m domain.ListMutation) (domain.MutationResult, error) {
	if err := m.Validate(); err != nil {
		return domain.MutationResult{}, err
	}

	var res domain.MutationResult
	txf := func(tx *redis.Tx) error {
		doc, err := readContent(ctx, tx, userID)
		if err != nil {
			return err
		}
		res, err = domain.ApplyMutation(doc, userID, m, s.now())
		if err != nil {
			return err
		}
		if !res.NeedsWrite() {
			return nil
		}
		return writeContent(ctx, tx, res.Content)
	}

	if err := s.watch(ctx, ContentKey(userID), txf); err != nil {
		return domain.MutationResult{}, err
	}
	return res, nil
}

// watch retries txf while EXEC reports a conflicting write.
func (s *Store) watch(ctx context.Context, key string, txf func(*redis.Tx) error) error {
	for attempt := 0; attempt < store.MaxApplyAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case store.IsDomainError(err), errors.Is(err, domain.ErrStoreUnavailable):
			return err
		default:
			return store.Unavailable("update content", err)
		}
	}
	return store.Unavailable("update content", store.ErrContention)
}

// getter is satisfied by both *redis.Client and a WATCHed *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// readContent loads a document. A missing key yields a nil document and no error.
func readContent(ctx context.Context, c getter, userID string) (*domain.UserContent, error) {
	data, err := c.Get(ctx, ContentKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, store.Unavailable("get content", err)
	}

	var doc domain.UserContent
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, store.Unavailable("unmarshal content", err)
	}
	doc.Normalize()
	return &doc, nil
}

// writeContent queues the document and its index entry in one MULTI/EXEC.
func writeContent(ctx context.Context, tx *redis.Tx, doc *domain.UserContent) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, ContentKey(doc.UserID), data, 0)
		pipe.SAdd(ctx, AllUsersKey(), doc.UserID)
		return nil
	})
	return err
}
