package domain

import (
	"fmt"
	"strings"
	"time"
)

// Op names a list mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpMove   Op = "move"
	OpRemove Op = "remove"
)

// ListMutation is a targeted change to the lists of one category.
// List is the target for add/remove and the source for move.
type ListMutation struct {
	Op       Op
	Category Category
	List     ListName
	ToList   ListName
	Item     Item
	ItemID   string
}

// Validate rejects mutations outside the category/list enumerations or missing ids.
func (m ListMutation) Validate() error {
	if !m.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, m.Category)
	}
	if !m.List.Valid() {
		return fmt.Errorf("%w: unknown list %q", ErrInvalidInput, m.List)
	}

	switch m.Op {
	case OpAdd:
		return m.Item.Validate()
	case OpMove:
		if !m.ToList.Valid() {
			return fmt.Errorf("%w: unknown list %q", ErrInvalidInput, m.ToList)
		}
		if strings.TrimSpace(m.ItemID) == "" {
			return fmt.Errorf("%w: itemId is required", ErrInvalidInput)
		}
	case OpRemove:
		if strings.TrimSpace(m.ItemID) == "" {
			return fmt.Errorf("%w: itemId is required", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidInput, m.Op)
	}
	return nil
}

// TargetID is the id of the item the mutation touches.
func (m ListMutation) TargetID() string {
	if m.Op == OpAdd {
		return m.Item.ID
	}
	return m.ItemID
}

// MutationResult describes the outcome of applying a ListMutation.
// Changed is false for idempotent no-ops; Created is true when the document did not exist.
// Stores persist Content only when Changed or Created is set.
type MutationResult struct {
	Content *UserContent
	Changed bool
	Created bool
}

// NeedsWrite reports whether the store has to persist Content.
func (r MutationResult) NeedsWrite() bool { return r.Changed || r.Created }

// ApplyMutation computes the effect of m on doc. doc may be nil when the user has no document
// yet. doc is never modified; the result carries a fresh copy.
//
// Backends call this inside their own atomic section (transaction, WATCH, mutex).
func ApplyMutation(doc *UserContent, userID string, m ListMutation, now time.Time) (MutationResult, error) {
	if err := m.Validate(); err != nil {
		return MutationResult{}, err
	}

	var res MutationResult
	if doc == nil {
		if m.Op != OpAdd {
			return MutationResult{}, fmt.Errorf("%w: no content for user %q", ErrNotFound, userID)
		}
		res.Content = NewUserContent(userID, now)
		res.Created = true
	} else {
		res.Content = doc.Clone()
		res.Content.Normalize()
	}

	cl := res.Content.Category(m.Category)
	src := cl.List(m.List)

	switch m.Op {
	case OpAdd:
		if indexOf(*src, m.Item.ID) < 0 {
			*src = append(*src, m.Item.Clone())
			res.Changed = true
		}

	case OpMove:
		idx := indexOf(*src, m.ItemID)
		if idx < 0 {
			return MutationResult{}, fmt.Errorf("%w: item %q not in %s.%s", ErrNotFound, m.ItemID, m.Category, m.List)
		}
		if m.List == m.ToList {
			break
		}
		stored := (*src)[idx]
		*src = append((*src)[:idx], (*src)[idx+1:]...)
		dst := cl.List(m.ToList)
		if indexOf(*dst, m.ItemID) < 0 {
			*dst = append(*dst, stored)
		}
		res.Changed = true

	case OpRemove:
		if idx := indexOf(*src, m.ItemID); idx >= 0 {
			*src = append((*src)[:idx], (*src)[idx+1:]...)
			res.Changed = true
		}
	}

	if res.NeedsWrite() {
		res.Content.Touch(now)
	}
	return res, nil
}

func indexOf(items []Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
