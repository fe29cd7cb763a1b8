package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CategoryLists holds the three status buckets of one category.
type CategoryLists struct {
	Planned    []Item `json:"planned"`
	InProgress []Item `json:"inProgress"`
	Completed  []Item `json:"completed"`
}

// List returns a pointer to the named bucket so callers can mutate it in place.
func (cl *CategoryLists) List(name ListName) *[]Item {
	switch name {
	case ListPlanned:
		return &cl.Planned
	case ListInProgress:
		return &cl.InProgress
	case ListCompleted:
		return &cl.Completed
	default:
		return nil
	}
}

// Len is the number of items across all three buckets.
func (cl CategoryLists) Len() int {
	return len(cl.Planned) + len(cl.InProgress) + len(cl.Completed)
}

func (cl *CategoryLists) normalize() {
	for _, name := range lists {
		l := cl.List(name)
		if *l == nil {
			*l = []Item{}
		}
	}
}

func (cl CategoryLists) clone() CategoryLists {
	return CategoryLists{
		Planned:    cloneItems(cl.Planned),
		InProgress: cloneItems(cl.InProgress),
		Completed:  cloneItems(cl.Completed),
	}
}

func cloneItems(in []Item) []Item {
	out := make([]Item, len(in))
	for i, it := range in {
		out[i] = it.Clone()
	}
	return out
}

// UserContent is the single per-user document.
type UserContent struct {
	DocumentID string        `json:"documentId"`
	UserID     string        `json:"userId"`
	Movies     CategoryLists `json:"movies"`
	Anime      CategoryLists `json:"anime"`
	Shows      CategoryLists `json:"shows"`
	Books      CategoryLists `json:"books"`
	Songs      CategoryLists `json:"songs"`
	Games      CategoryLists `json:"games"`
	Version    int64         `json:"version"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// NewUserContent builds an empty document with every category and list present.
func NewUserContent(userID string, now time.Time) *UserContent {
	doc := &UserContent{
		DocumentID: uuid.NewString(),
		UserID:     userID,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	doc.Normalize()
	return doc
}

// Category returns the lists of c, or nil when c is not a known category.
func (u *UserContent) Category(c Category) *CategoryLists {
	switch c {
	case CategoryMovies:
		return &u.Movies
	case CategoryAnime:
		return &u.Anime
	case CategoryShows:
		return &u.Shows
	case CategoryBooks:
		return &u.Books
	case CategorySongs:
		return &u.Songs
	case CategoryGames:
		return &u.Games
	default:
		return nil
	}
}

// Normalize replaces nil lists with empty ones so the full shape is always serialized.
func (u *UserContent) Normalize() {
	for _, c := range categories {
		u.Category(c).normalize()
	}
}

// Clone returns a deep copy of the document structure.
func (u *UserContent) Clone() *UserContent {
	if u == nil {
		return nil
	}
	out := *u
	for _, c := range categories {
		*out.Category(c) = u.Category(c).clone()
	}
	return &out
}

// Touch bumps the version and update timestamp after a write.
func (u *UserContent) Touch(now time.Time) {
	u.Version++
	u.UpdatedAt = now.UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = u.UpdatedAt
	}
}

// Supersede prepares u to replace prev (nil on creation): the document id and creation time
// carry over and the version advances past prev's.
func (u *UserContent) Supersede(prev *UserContent, now time.Time) {
	u.Normalize()
	if prev != nil {
		u.DocumentID = prev.DocumentID
		u.CreatedAt = prev.CreatedAt
		u.Version = prev.Version
	} else {
		if u.DocumentID == "" {
			u.DocumentID = uuid.NewString()
		}
		u.Version = 0
		u.CreatedAt = time.Time{}
	}
	u.Touch(now)
}

// Validate checks the identity and shape of a document before it is persisted.
func (u *UserContent) Validate() error {
	if u == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidInput)
	}
	if u.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	for _, c := range categories {
		cl := u.Category(c)
		for _, name := range lists {
			seen := make(map[string]struct{}, len(*cl.List(name)))
			for _, it := range *cl.List(name) {
				if err := it.Validate(); err != nil {
					return fmt.Errorf("%s.%s: %w", c, name, err)
				}
				if _, dup := seen[it.ID]; dup {
					return fmt.Errorf("%w: duplicate id %q in %s.%s", ErrInvalidInput, it.ID, c, name)
				}
				seen[it.ID] = struct{}{}
			}
		}
	}
	return nil
}

// PublicContent is the projection served to anyone holding a profile link.
// It carries no store metadata.
type PublicContent struct {
	UserID string        `json:"userId"`
	Movies CategoryLists `json:"movies"`
	Anime  CategoryLists `json:"anime"`
	Shows  CategoryLists `json:"shows"`
	Books  CategoryLists `json:"books"`
	Songs  CategoryLists `json:"songs"`
	Games  CategoryLists `json:"games"`
}

// Public strips documentId, version and timestamps.
func (u *UserContent) Public() PublicContent {
	c := u.Clone()
	c.Normalize()
	return PublicContent{
		UserID: c.UserID,
		Movies: c.Movies,
		Anime:  c.Anime,
		Shows:  c.Shows,
		Books:  c.Books,
		Songs:  c.Songs,
		Games:  c.Games,
	}
}
