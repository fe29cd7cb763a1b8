// Package content implements the mutation API and read models over the content store.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/events"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
	"github.com/MrSnakeDoc/icebreaker/internal/recommend"
	"github.com/MrSnakeDoc/icebreaker/internal/store"
)

// PreviewSize is how many items per list the public profile summary shows.
const PreviewSize = 4

// Service is the only writer of user content.
type Service struct {
	store       store.Store
	events      events.Publisher
	recommender recommend.Recommender
	logger      logger.Logger
	now         func() time.Time
}

// NewService wires the service. pub and rec may be nil.
func NewService(st store.Store, pub events.Publisher, rec recommend.Recommender, log logger.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		store:       st,
		events:      pub,
		recommender: rec,
		logger:      log,
		now:         time.Now,
	}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// GetContent returns the caller's full document.
func (s *Service) GetContent(ctx context.Context, userID string) (*domain.UserContent, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	doc, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return doc, nil
}

// AddItem appends item to category.list, creating the document on first use.
// Adding an id already present in the list is a successful no-op.
func (s *Service) AddItem(ctx context.Context, userID, category, list string, item domain.Item) error {
	m, err := newMutation(domain.OpAdd, category, list, "")
	if err != nil {
		return err
	}
	m.Item = item

	_, err = s.apply(ctx, userID, m)
	return err
}

// MoveItem transfers the stored record of itemID from fromList to toList.
func (s *Service) MoveItem(ctx context.Context, userID, category, fromList, toList, itemID string) error {
	m, err := newMutation(domain.OpMove, category, fromList, toList)
	if err != nil {
		return err
	}
	m.ItemID = itemID

	_, err = s.apply(ctx, userID, m)
	return err
}

// RemoveItem drops itemID from category.list and returns the resulting document.
// Removing an absent id succeeds without writing.
func (s *Service) RemoveItem(ctx context.Context, userID, category, list, itemID string) (*domain.UserContent, error) {
	m, err := newMutation(domain.OpRemove, category, list, "")
	if err != nil {
		return nil, err
	}
	m.ItemID = itemID

	res, err := s.apply(ctx, userID, m)
	if err != nil {
		return nil, err
	}
	return res.Content, nil
}

func newMutation(op domain.Op, category, list, toList string) (domain.ListMutation, error) {
	c, err := domain.ParseCategory(category)
	if err != nil {
		return domain.ListMutation{}, err
	}
	l, err := domain.ParseList(list)
	if err != nil {
		return domain.ListMutation{}, err
	}
	m := domain.ListMutation{Op: op, Category: c, List: l}
	if op == domain.OpMove {
		if m.ToList, err = domain.ParseList(toList); err != nil {
			return domain.ListMutation{}, err
		}
	}
	return m, nil
}

func (s *Service) apply(ctx context.Context, userID string, m domain.ListMutation) (domain.MutationResult, error) {
	if err := requireUser(userID); err != nil {
		return domain.MutationResult{}, err
	}
	if err := m.Validate(); err != nil {
		return domain.MutationResult{}, err
	}

	res, err := s.store.Apply(ctx, userID, m)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			s.logger.Error("content mutation failed",
				logger.String("user_id", userID),
				logger.String("op", string(m.Op)),
				logger.Error(err))
		}
		return domain.MutationResult{}, fmt.Errorf("failed to %s item: %w", m.Op, err)
	}

	if res.NeedsWrite() {
		s.events.Publish(events.FromMutation(userID, m, s.now()))
	}
	s.logger.Debug("content mutation applied",
		logger.String("user_id", userID),
		logger.String("op", string(m.Op)),
		logger.String("category", string(m.Category)),
		logger.String("item_id", m.TargetID()),
		logger.Bool("changed", res.Changed),
		logger.Bool("created", res.Created))
	return res, nil
}
