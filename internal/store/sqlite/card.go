package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/store"
)

func (s *Store) GetCard(ctx context.Context, userID string) (*domain.CardProfile, error) {
	var (
		card      = domain.CardProfile{UserID: userID}
		theme     string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT username, description, theme, updated_at FROM card_profiles WHERE user_id = ?`,
		userID,
	).Scan(&card.Username, &card.Description, &theme, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no card for user %q", domain.ErrNotFound, userID)
		}
		return nil, store.Unavailable("get card", err)
	}

	card.Theme = domain.Category(theme)
	if card.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, store.Unavailable("parse card updated_at", err)
	}
	return &card, nil
}

func (s *Store) SaveCard(ctx context.Context, card *domain.CardProfile) error {
	if err := card.Validate(); err != nil {
		return err
	}
	card.UpdatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO card_profiles (user_id, username, description, theme, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     username = excluded.username,
		     description = excluded.description,
		     theme = excluded.theme,
		     updated_at = excluded.updated_at`,
		card.UserID, card.Username, card.Description, string(card.Theme),
		card.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return store.Unavailable("save card", err)
	}
	return nil
}
