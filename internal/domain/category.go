package domain

import (
	"fmt"
	"strings"
)

// Category is one of the six fixed media categories of a UserContent document.
type Category string

const (
	CategoryMovies Category = "movies"
	CategoryAnime  Category = "anime"
	CategoryShows  Category = "shows"
	CategoryBooks  Category = "books"
	CategorySongs  Category = "songs"
	CategoryGames  Category = "games"
)

// categories is the canonical order, used for iteration and tie-breaking.
var categories = []Category{
	CategoryMovies,
	CategoryAnime,
	CategoryShows,
	CategoryBooks,
	CategorySongs,
	CategoryGames,
}

var categoryDisplay = map[Category]struct {
	name    string
	tagline string
}{
	CategoryMovies: {name: "Movies", tagline: "Cinema Buff"},
	CategoryAnime:  {name: "Anime", tagline: "Otaku Supreme"},
	CategoryShows:  {name: "TV Shows", tagline: "Binge Watcher"},
	CategoryBooks:  {name: "Books", tagline: "Page Turner"},
	CategorySongs:  {name: "Music", tagline: "Melody Maker"},
	CategoryGames:  {name: "Games", tagline: "Game Master"},
}

// Categories returns the six categories in canonical order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c belongs to the fixed category set.
func (c Category) Valid() bool {
	_, ok := categoryDisplay[c]
	return ok
}

// DisplayName is the human label shown on cards and profiles.
func (c Category) DisplayName() string { return categoryDisplay[c].name }

// Tagline is the card subtitle for a theme.
func (c Category) Tagline() string { return categoryDisplay[c].tagline }

// ParseCategory validates a raw category name. Names are case-sensitive.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
	}
	return c, nil
}

// ListName is one of the three status buckets inside a category.
type ListName string

const (
	ListPlanned    ListName = "planned"
	ListInProgress ListName = "inProgress"
	ListCompleted  ListName = "completed"
)

var lists = []ListName{ListPlanned, ListInProgress, ListCompleted}

// Lists returns the three list names in canonical order.
func Lists() []ListName {
	out := make([]ListName, len(lists))
	copy(out, lists)
	return out
}

// Valid reports whether l belongs to the fixed list set.
func (l ListName) Valid() bool {
	switch l {
	case ListPlanned, ListInProgress, ListCompleted:
		return true
	default:
		return false
	}
}

// ParseList validates a raw list name. Names are case-sensitive.
func ParseList(s string) (ListName, error) {
	l := ListName(strings.TrimSpace(s))
	if !l.Valid() {
		return "", fmt.Errorf("%w: unknown list %q", ErrInvalidInput, s)
	}
	return l, nil
}
