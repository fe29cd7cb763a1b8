package domain

import "math"

// hoursPerItem is the flat time estimate credited to every catalogued item.
const hoursPerItem = 3.7

type rankTier struct {
	min   int
	label string
}

var rankTiers = []rankTier{
	{min: 500, label: "God Mode"},
	{min: 200, label: "Pro Watcher"},
	{min: 75, label: "Binge Boss"},
	{min: 30, label: "Casual Viewer"},
	{min: 0, label: "Noob List"},
}

// CategoryStats counts the items of one category.
type CategoryStats struct {
	Planned    int `json:"planned"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
}

// Stats aggregates a whole document.
type Stats struct {
	Categories     map[Category]CategoryStats `json:"categories"`
	Total          int                        `json:"total"`
	TopCategory    Category                   `json:"topCategory"`
	TopCompleted   Category                   `json:"topCompleted"`
	EstimatedHours float64                    `json:"estimatedHours"`
	Rank           string                     `json:"rank"`
}

// Rank maps an item total to its tier label.
func Rank(total int) string {
	for _, t := range rankTiers {
		if total >= t.min {
			return t.label
		}
	}
	return rankTiers[len(rankTiers)-1].label
}

// ComputeStats aggregates doc. A nil doc yields all-zero stats.
func ComputeStats(doc *UserContent) Stats {
	s := Stats{Categories: make(map[Category]CategoryStats, len(categories))}

	bestTotal, bestCompleted := 0, 0
	for _, c := range categories {
		var cs CategoryStats
		if doc != nil {
			cl := doc.Category(c)
			cs = CategoryStats{
				Planned:    len(cl.Planned),
				InProgress: len(cl.InProgress),
				Completed:  len(cl.Completed),
			}
			cs.Total = cs.Planned + cs.InProgress + cs.Completed
		}
		s.Categories[c] = cs
		s.Total += cs.Total

		// strict comparison keeps the first category in canonical order on ties
		if cs.Total > bestTotal {
			bestTotal = cs.Total
			s.TopCategory = c
		}
		if cs.Completed > bestCompleted {
			bestCompleted = cs.Completed
			s.TopCompleted = c
		}
	}

	s.EstimatedHours = math.Round(float64(s.Total)*hoursPerItem*10) / 10
	s.Rank = Rank(s.Total)
	return s
}

// CategoriesByCompleted orders the categories by completed count, descending,
// keeping canonical order among equals.
func (s Stats) CategoriesByCompleted() []Category {
	out := Categories()
	// insertion sort is stable and the slice has six entries
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && s.Categories[out[j]].Completed > s.Categories[out[j-1]].Completed; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Preview returns the first n items of every list, keyed like the document.
func Preview(doc *UserContent, n int) map[Category]CategoryLists {
	out := make(map[Category]CategoryLists, len(categories))
	for _, c := range categories {
		var cl CategoryLists
		if doc != nil {
			src := doc.Category(c)
			cl = CategoryLists{
				Planned:    head(src.Planned, n),
				InProgress: head(src.InProgress, n),
				Completed:  head(src.Completed, n),
			}
		}
		cl.normalize()
		out[c] = cl
	}
	return out
}

func head(items []Item, n int) []Item {
	if n < 0 || len(items) <= n {
		return cloneItems(items)
	}
	return cloneItems(items[:n])
}
