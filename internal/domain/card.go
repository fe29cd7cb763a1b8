package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultUsername is shown on cards of users that never picked a name.
	DefaultUsername = "MediaEnthusiast"

	maxUsernameLen    = 64
	maxDescriptionLen = 280
)

// CardProfile is the user-editable part of the Ice Card.
type CardProfile struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	Theme       Category  `json:"theme"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate trims the free-text fields and checks their bounds.
func (p *CardProfile) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	p.Username = strings.TrimSpace(p.Username)
	p.Description = strings.TrimSpace(p.Description)

	if utf8.RuneCountInString(p.Username) > maxUsernameLen {
		return fmt.Errorf("%w: username longer than %d characters", ErrInvalidInput, maxUsernameLen)
	}
	if utf8.RuneCountInString(p.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description longer than %d characters", ErrInvalidInput, maxDescriptionLen)
	}
	if p.Theme != "" && !p.Theme.Valid() {
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidInput, p.Theme)
	}
	return nil
}

// DefaultCardDescription builds "✨ <username>'s A • B • C journey" from the three
// categories with the most completed items.
func DefaultCardDescription(username string, s Stats) string {
	if username == "" {
		username = DefaultUsername
	}
	top := s.CategoriesByCompleted()[:3]
	names := make([]string, len(top))
	for i, c := range top {
		names[i] = c.DisplayName()
	}
	return fmt.Sprintf("✨ %s's %s journey", username, strings.Join(names, " • "))
}

// ResolveCard fills the blanks of a saved card (or a missing one) from the stats.
func ResolveCard(userID string, saved *CardProfile, s Stats) CardProfile {
	var out CardProfile
	if saved != nil {
		out = *saved
	}
	out.UserID = userID
	if out.Username == "" {
		out.Username = DefaultUsername
	}
	if out.Theme == "" {
		out.Theme = s.CategoriesByCompleted()[0]
	}
	if out.Description == "" {
		out.Description = DefaultCardDescription(out.Username, s)
	}
	return out
}
