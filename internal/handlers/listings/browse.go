package listings

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// ErrStaleRefresh is returned by Refresh when a newer refresh superseded it
// before its fetch completed. The superseded response has been discarded.
var ErrStaleRefresh = errors.New("listings: refresh superseded by a newer one")

// Fetcher loads the category-scoped collection a Browser operates on.
type Fetcher func(ctx context.Context, category string) ([]Listing, error)

// Browser keeps a displayed item set consistent with user-driven filter
// state. Fetching and filtering are deliberately decoupled: Refresh does the
// infrequent I/O and produces an immutable snapshot, SetFilter re-runs the
// pure pipeline over that snapshot on every predicate change without
// re-triggering I/O.
//
// Each Refresh is tagged with a token and cancels the previous in-flight
// fetch; a fetch that completes after it has been superseded is discarded, so
// a slow response for an old category can never overwrite the current view.
type Browser struct {
	fetch Fetcher

	mu       sync.Mutex
	filter   FilterState
	category string
	snapshot []Listing
	visible  []Listing
	token    uuid.UUID
	cancel   context.CancelFunc
}

func NewBrowser(fetch Fetcher) *Browser {
	return &Browser{
		fetch:    fetch,
		filter:   DefaultFilterState(),
		category: CategoryAll,
	}
}

// Refresh fetches a fresh snapshot for the given category and re-applies the
// current filter to it. Returns ErrStaleRefresh when a concurrent Refresh won.
func (b *Browser) Refresh(ctx context.Context, category string) error {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	token := uuid.New()
	b.token = token
	b.category = category
	b.mu.Unlock()

	items, err := b.fetch(fetchCtx, category)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.token != token {
		return ErrStaleRefresh
	}
	if err != nil {
		return err
	}
	b.snapshot = items
	b.visible = Filter(items, b.filter)
	return nil
}

// SetFilter replaces the predicate state and synchronously recomputes the
// visible items from the current snapshot. No I/O happens here.
func (b *Browser) SetFilter(state FilterState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = state
	b.visible = Filter(b.snapshot, state)
}

// Items returns the currently visible, filtered and sorted listings.
func (b *Browser) Items() []Listing {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.visible)
}

// Category reports the category of the current snapshot.
func (b *Browser) Category() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.category
}
