package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Item is a catalogued media entry.
//
// Only ID and Title are interpreted. Everything else a producer sends (year, image,
// description, genre, episodes, author, rating, previewUrl, ...) is kept verbatim in
// Attrs and flattened back into the same JSON object on the way out.
type Item struct {
	ID    string
	Title string
	Attrs map[string]any
}

// Validate checks the fields the mutation logic depends on.
func (it Item) Validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(it.Title) == "" {
		return fmt.Errorf("%w: item title is required", ErrInvalidInput)
	}
	return nil
}

// Attr returns a raw attribute value.
func (it Item) Attr(key string) (any, bool) {
	v, ok := it.Attrs[key]
	return v, ok
}

// Clone returns a copy whose attribute map can be modified independently.
// Nested attribute values are shared; they are never mutated in place.
func (it Item) Clone() Item {
	out := Item{ID: it.ID, Title: it.Title}
	if len(it.Attrs) > 0 {
		out.Attrs = make(map[string]any, len(it.Attrs))
		for k, v := range it.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

func (it Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Attrs)+2)
	for k, v := range it.Attrs {
		out[k] = v
	}
	out["id"] = it.ID
	out["title"] = it.Title
	return json.Marshal(out)
}

func (it *Item) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode item: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("%w: item must be an object", ErrInvalidInput)
	}

	id, err := scalarString(raw["id"])
	if err != nil {
		return fmt.Errorf("%w: item id: %v", ErrInvalidInput, err)
	}
	title, err := scalarString(raw["title"])
	if err != nil {
		return fmt.Errorf("%w: item title: %v", ErrInvalidInput, err)
	}
	delete(raw, "id")
	delete(raw, "title")

	it.ID = id
	it.Title = title
	it.Attrs = nil
	if len(raw) > 0 {
		it.Attrs = raw
	}
	return nil
}

// scalarString accepts the string or numeric ids external catalogs hand out.
func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
}
