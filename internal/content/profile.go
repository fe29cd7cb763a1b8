package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/recommend"
)

// ProfileSummary is the public overview shown on a shared profile page.
type ProfileSummary struct {
	UserID  string                                   `json:"userId"`
	Stats   domain.Stats                             `json:"stats"`
	Preview map[domain.Category]domain.CategoryLists `json:"preview"`
	Self    bool                                     `json:"self"` // viewer owns the profile
}

// CardView is everything the card generator renders.
type CardView struct {
	Card        domain.CardProfile `json:"card"`
	Stats       domain.Stats       `json:"stats"`
	ProfilePath string             `json:"profilePath"`
}

// PublicProfile returns any user's document without store metadata. No identity is
// required: profiles are shareable by link.
func (s *Service) PublicProfile(ctx context.Context, userID string) (domain.PublicContent, error) {
	if userID == "" {
		return domain.PublicContent{}, fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}
	doc, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		return domain.PublicContent{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return doc.Public(), nil
}

// ProfileSummary returns stats and the first PreviewSize items of every list.
func (s *Service) ProfileSummary(ctx context.Context, userID string) (ProfileSummary, error) {
	if userID == "" {
		return ProfileSummary{}, fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}
	doc, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		return ProfileSummary{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return ProfileSummary{
		UserID:  userID,
		Stats:   domain.ComputeStats(doc),
		Preview: domain.Preview(doc, PreviewSize),
	}, nil
}

// Stats aggregates the caller's document. A user without a document gets zeros.
func (s *Service) Stats(ctx context.Context, userID string) (domain.Stats, error) {
	doc, err := s.optionalContent(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(doc), nil
}

// Card returns the saved card merged with defaults derived from the stats.
// username is the display name from the identity, used when the saved card has none.
func (s *Service) Card(ctx context.Context, userID, username string) (CardView, error) {
	doc, err := s.optionalContent(ctx, userID)
	if err != nil {
		return CardView{}, err
	}

	saved, err := s.store.GetCard(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return CardView{}, fmt.Errorf("failed to get card: %w", err)
	}
	switch {
	case username == "":
	case saved == nil:
		saved = &domain.CardProfile{Username: username}
	case saved.Username == "":
		merged := *saved
		merged.Username = username
		saved = &merged
	}

	stats := domain.ComputeStats(doc)
	return CardView{
		Card:        domain.ResolveCard(userID, saved, stats),
		Stats:       stats,
		ProfilePath: "/profile/" + userID,
	}, nil
}

// SaveCard upserts the editable card fields for the caller.
func (s *Service) SaveCard(ctx context.Context, userID string, card domain.CardProfile) (domain.CardProfile, error) {
	if err := requireUser(userID); err != nil {
		return domain.CardProfile{}, err
	}
	card.UserID = userID
	if err := s.store.SaveCard(ctx, &card); err != nil {
		return domain.CardProfile{}, fmt.Errorf("failed to save card: %w", err)
	}
	return card, nil
}

// Recommendations asks the configured model for titles similar to the caller's completed
// items in category. No completed items means no model call and an empty result.
func (s *Service) Recommendations(ctx context.Context, userID, category string) ([]recommend.Recommendation, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	c, err := domain.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if s.recommender == nil {
		return nil, recommend.ErrDisabled
	}

	doc, err := s.optionalContent(ctx, userID)
	if err != nil {
		return nil, err
	}
	titles := recommend.SeedTitles(doc, c)
	if len(titles) == 0 {
		return []recommend.Recommendation{}, nil
	}

	recs, err := s.recommender.Recommend(ctx, c, titles)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}
	return recs, nil
}

// RecommenderName reports the configured model, empty when disabled.
func (s *Service) RecommenderName() string {
	if s.recommender == nil {
		return ""
	}
	return s.recommender.Name()
}

// optionalContent treats a missing document as empty.
func (s *Service) optionalContent(ctx context.Context, userID string) (*domain.UserContent, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	doc, err := s.store.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return doc, nil
}
