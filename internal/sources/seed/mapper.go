package seed

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
)

// Entry is one item to ensure in a user's list.
type Entry struct {
	UserID   string
	Category domain.Category
	List     domain.ListName
	Item     domain.Item
}

// Mapper converts a seed file to entries
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapEntries flattens f into entries in a stable order (file order for users and items,
// canonical order for categories and lists). Invalid parts are skipped and reported
// together in the returned error alongside the valid entries.
func (m *Mapper) MapEntries(f File) ([]Entry, error) {
	var (
		entries []Entry
		errs    []error
	)

	for ui, u := range f.Users {
		userID := strings.TrimSpace(u.UserID)
		if userID == "" {
			errs = append(errs, fmt.Errorf("users[%d]: %w: userId is required", ui, domain.ErrInvalidInput))
			continue
		}

		for _, rawCategory := range sortedKeys(u.Content) {
			category, err := domain.ParseCategory(rawCategory)
			if err != nil {
				errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
				continue
			}

			lists := u.Content[rawCategory]
			for _, rawList := range sortedKeys(lists) {
				list, err := domain.ParseList(rawList)
				if err != nil {
					errs = append(errs, fmt.Errorf("user %s %s: %w", userID, category, err))
					continue
				}

				for i, raw := range lists[rawList] {
					item, err := toItem(raw)
					if err != nil {
						errs = append(errs, fmt.Errorf("user %s %s.%s[%d]: %w", userID, category, list, i, err))
						continue
					}
					entries = append(entries, Entry{UserID: userID, Category: category, List: list, Item: item})
				}
			}
		}
	}

	return entries, errors.Join(errs...)
}

// toItem keeps id and title as strings and every other key as an attribute.
func toItem(raw map[string]interface{}) (domain.Item, error) {
	item := domain.Item{
		ID:    scalar(raw["id"]),
		Title: scalar(raw["title"]),
	}
	for k, v := range raw {
		if k == "id" || k == "title" {
			continue
		}
		if item.Attrs == nil {
			item.Attrs = make(map[string]any, len(raw))
		}
		item.Attrs[k] = v
	}
	if err := item.Validate(); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// rank orders known category and list names canonically and everything else after them.
func rank(name string) int {
	for i, c := range domain.Categories() {
		if string(c) == name {
			return i
		}
	}
	for i, l := range domain.Lists() {
		if string(l) == name {
			return i
		}
	}
	return len(domain.Categories())
}
