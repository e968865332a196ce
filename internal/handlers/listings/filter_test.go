package listings

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureItems() []Listing {
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	t3 := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	return []Listing{
		{ID: "1", Name: "Charizard card", Description: "Holo first edition", Price: 50, Category: "Card", CreatedAt: t1},
		{ID: "2", Name: "Omega Watch", Description: "Seamaster, boxed", Price: 6000, Category: "Watches", CreatedAt: t2},
		{ID: "3", Name: "Ming Vase", Description: "Dynasty antique", Price: 6000, Category: "Antique", CreatedAt: t3},
	}
}

func matchAll() FilterState {
	return FilterState{
		Category: CategoryAll,
		PriceMin: 0,
		PriceMax: math.Inf(1),
		SortBy:   SortRecent,
	}
}

func TestFilter_NoOpPredicateIsPermutation(t *testing.T) {
	items := fixtureItems()

	for _, mode := range []SortMode{SortRecent, SortPriceLow, SortPriceHigh, SortPopular} {
		state := matchAll()
		state.SortBy = mode

		out := Filter(items, state)
		assert.Len(t, out, len(items), "mode %s must keep every item", mode)

		seen := map[string]bool{}
		for _, item := range out {
			seen[item.ID] = true
		}
		assert.Len(t, seen, len(items), "mode %s must not duplicate items", mode)
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	items := fixtureItems()

	state := matchAll()
	state.SortBy = SortPriceLow
	_ = Filter(items, state)

	assert.Equal(t, fixtureItems(), items)
}

func TestFilter_SearchMatchesNameOrDescription(t *testing.T) {
	items := fixtureItems()

	state := matchAll()
	state.SearchQuery = "CARD"
	out := Filter(items, state)
	require.Len(t, out, 1)
	assert.Equal(t, "Charizard card", out[0].Name)

	// Description matches too.
	state.SearchQuery = "antique"
	out = Filter(items, state)
	require.Len(t, out, 1)
	assert.Equal(t, "Ming Vase", out[0].Name)
}

func TestFilter_ScenarioSearchCard(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	items := []Listing{
		{Name: "Charizard card", Price: 50, Category: "Card", CreatedAt: t1},
		{Name: "Omega Watch", Price: 6000, Category: "Watches", CreatedAt: t2},
	}

	out := Filter(items, FilterState{
		SearchQuery: "card",
		Category:    CategoryAll,
		PriceMin:    0,
		PriceMax:    10000,
		SortBy:      SortRecent,
	})

	require.Len(t, out, 1)
	assert.Equal(t, "Charizard card", out[0].Name)
}

func TestFilter_ScenarioPriceHigh(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	items := []Listing{
		{Name: "Charizard card", Price: 50, Category: "Card", CreatedAt: t1},
		{Name: "Omega Watch", Price: 6000, Category: "Watches", CreatedAt: t2},
	}

	out := Filter(items, FilterState{
		Category: CategoryAll,
		PriceMin: 0,
		PriceMax: 10000,
		SortBy:   SortPriceHigh,
	})

	require.Len(t, out, 2)
	assert.Equal(t, "Omega Watch", out[0].Name)
	assert.Equal(t, "Charizard card", out[1].Name)
}

func TestFilter_CategoryExactMatch(t *testing.T) {
	items := fixtureItems()

	state := matchAll()
	state.Category = "Watches"
	out := Filter(items, state)
	require.Len(t, out, 1)
	assert.Equal(t, "Omega Watch", out[0].Name)

	// Unknown category matches nothing, no error.
	state.Category = "Sneakers"
	assert.Empty(t, Filter(items, state))
}

func TestFilter_PriceBoundsInclusive(t *testing.T) {
	items := fixtureItems()

	state := matchAll()
	state.PriceMin = 50
	state.PriceMax = 6000
	out := Filter(items, state)
	assert.Len(t, out, 3, "bounds are inclusive on both ends")
}

func TestFilter_ImpossibleRangeIsEmpty(t *testing.T) {
	state := matchAll()
	state.PriceMin = 100
	state.PriceMax = 10

	out := Filter(fixtureItems(), state)
	assert.Empty(t, out)
}

func TestFilter_EmptyInputIsEmptyOutput(t *testing.T) {
	assert.Empty(t, Filter(nil, matchAll()))
	assert.Empty(t, Filter([]Listing{}, matchAll()))
}

func TestFilter_Idempotent(t *testing.T) {
	state := matchAll()
	state.SearchQuery = "a"
	state.SortBy = SortPriceLow

	once := Filter(fixtureItems(), state)
	twice := Filter(once, state)
	assert.Equal(t, once, twice)
}

func TestFilter_PriceLowReversedEqualsPriceHighWithoutTies(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	items := []Listing{
		{ID: "a", Name: "A", Price: 10, CreatedAt: t1},
		{ID: "b", Name: "B", Price: 200, CreatedAt: t1},
		{ID: "c", Name: "C", Price: 35, CreatedAt: t1},
	}

	stateLow := matchAll()
	stateLow.SortBy = SortPriceLow
	low := Filter(items, stateLow)

	stateHigh := matchAll()
	stateHigh.SortBy = SortPriceHigh
	high := Filter(items, stateHigh)

	require.Len(t, low, 3)
	for i := range low {
		assert.Equal(t, low[len(low)-1-i].ID, high[i].ID)
	}
}

func TestFilter_PriceTiesBreakOnName(t *testing.T) {
	items := fixtureItems() // Ming Vase and Omega Watch both cost 6000

	state := matchAll()
	state.SortBy = SortPriceHigh
	out := Filter(items, state)

	require.Len(t, out, 3)
	assert.Equal(t, "Ming Vase", out[0].Name)
	assert.Equal(t, "Omega Watch", out[1].Name)
	assert.Equal(t, "Charizard card", out[2].Name)
}

func TestFilter_RecentKeepsTieOrderStable(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	items := []Listing{
		{ID: "first", CreatedAt: t1},
		{ID: "second", CreatedAt: t1},
		{ID: "third", CreatedAt: t1},
	}

	out := Filter(items, matchAll())
	require.Len(t, out, 3)
	assert.Equal(t, "first", out[0].ID)
	assert.Equal(t, "second", out[1].ID)
	assert.Equal(t, "third", out[2].ID)
}

func TestFilter_PopularIsAlphabetical(t *testing.T) {
	state := matchAll()
	state.SortBy = SortPopular

	out := Filter(fixtureItems(), state)
	require.Len(t, out, 3)
	assert.Equal(t, "Charizard card", out[0].Name)
	assert.Equal(t, "Ming Vase", out[1].Name)
	assert.Equal(t, "Omega Watch", out[2].Name)
}
