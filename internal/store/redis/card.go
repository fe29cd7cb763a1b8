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

// GetCard retrieves the saved card profile
func (s *Store) GetCard(ctx context.Context, userID string) (*domain.CardProfile, error) {
	data, err := s.client.Get(ctx, CardKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: no card for user %q", domain.ErrNotFound, userID)
		}
		return nil, store.Unavailable("get card", err)
	}

	var card domain.CardProfile
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, store.Unavailable("unmarshal card", err)
	}
	return &card, nil
}

// SaveCard upserts the card profile
func (s *Store) SaveCard(ctx context.Context, card *domain.CardProfile) error {
	if err := card.Validate(); err != nil {
		return err
	}
	card.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to marshal card: %w", err)
	}
	if err := s.client.Set(ctx, CardKey(card.UserID), data, 0).Err(); err != nil {
		return store.Unavailable("save card", err)
	}
	return nil
}
