package listings

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// SortMode selects the ordering applied after filtering.
type SortMode string

const (
	// SortRecent orders by creation time, newest first. Ties keep their
	// original relative order.
	SortRecent SortMode = "recent"
	// SortPriceLow / SortPriceHigh order by price; ties are broken by name
	// ascending so repeated runs over the same items are reproducible.
	SortPriceLow  SortMode = "price-low"
	SortPriceHigh SortMode = "price-high"
	// SortPopular is provisional: no popularity signal exists in the data
	// model, so this orders by name ascending as a placeholder.
	SortPopular SortMode = "popular"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// FilterState is the user-driven predicate applied to an in-memory collection
// of listings. The zero price bounds come from DefaultFilterState; the
// pipeline performs no validation of bounds, it just applies them.
type FilterState struct {
	SearchQuery string
	Category    string
	PriceMin    float64
	PriceMax    float64
	SortBy      SortMode
}

// DefaultFilterState matches everything and orders newest-first.
func DefaultFilterState() FilterState {
	return FilterState{
		Category: CategoryAll,
		PriceMin: 0,
		PriceMax: math.Inf(1),
		SortBy:   SortRecent,
	}
}

// Filter applies the search, category and price predicates and then sorts,
// returning a new slice. The input is never mutated, there is no I/O, and
// identical inputs always produce identical output, so it is safe to re-run
// on every keystroke and from concurrent callers.
func Filter(items []Listing, state FilterState) []Listing {
	query := strings.ToLower(strings.TrimSpace(state.SearchQuery))

	out := make([]Listing, 0, len(items))
	for _, item := range items {
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Name), query) &&
			!strings.Contains(strings.ToLower(item.Description), query) {
			continue
		}
		if state.Category != "" && state.Category != CategoryAll && item.Category != state.Category {
			continue
		}
		if item.Price < state.PriceMin || item.Price > state.PriceMax {
			continue
		}
		out = append(out, item)
	}

	switch state.SortBy {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b Listing) int {
			if c := cmp.Compare(a.Price, b.Price); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		})
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b Listing) int {
			if c := cmp.Compare(b.Price, a.Price); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		})
	case SortPopular:
		slices.SortStableFunc(out, func(a, b Listing) int {
			return strings.Compare(a.Name, b.Name)
		})
	default: // SortRecent
		slices.SortStableFunc(out, func(a, b Listing) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}

	return out
}
