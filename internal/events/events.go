// Package events fans applied content mutations out to the owner's live connections.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
)

const (
	TypeAdd    = "content.add"
	TypeMove   = "content.move"
	TypeRemove = "content.remove"
)

// Event describes one applied mutation.
type Event struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	UserID   string          `json:"userId"`
	Category domain.Category `json:"category"`
	List     domain.ListName `json:"list"`
	ToList   domain.ListName `json:"toList,omitempty"`
	ItemID   string          `json:"itemId"`
	At       time.Time       `json:"at"`
}

// Publisher receives events after a mutation committed.
type Publisher interface {
	Publish(ev Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(Event) {}

// FromMutation builds the event for an applied mutation.
func FromMutation(userID string, m domain.ListMutation, at time.Time) Event {
	ev := Event{
		ID:       uuid.NewString(),
		UserID:   userID,
		Category: m.Category,
		List:     m.List,
		ItemID:   m.TargetID(),
		At:       at.UTC(),
	}
	switch m.Op {
	case domain.OpAdd:
		ev.Type = TypeAdd
	case domain.OpMove:
		ev.Type = TypeMove
		ev.ToList = m.ToList
	case domain.OpRemove:
		ev.Type = TypeRemove
	}
	return ev
}
