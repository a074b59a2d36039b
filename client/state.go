package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"pod-catalog/internal/catalog"
)

// CatalogAPI is the service surface the state container drives. *Client
// satisfies it; tests substitute a fake.
type CatalogAPI interface {
	ListProducts(ctx context.Context, params catalog.ListParams) (*catalog.ListResponse, error)
	CreateProduct(ctx context.Context, p catalog.Product) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, upd catalog.ProductUpdate) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
}

// State holds the current page of results, the active filters, a bounded
// page cache, and loading/error flags for the paginated product UI.
//
// Each fetch carries a sequence number; only the response matching the
// newest issued sequence commits, so a slow early fetch resolving after a
// later one is discarded instead of clobbering it.
type State struct {
	mu  sync.Mutex
	api CatalogAPI

	page             int
	limit            int
	searchTerm       string
	selectedCategory string

	items      []catalog.Product
	pagination catalog.Pagination
	loading    bool
	lastError  string

	cache *pageCache
	seq   uint64

	onChange func()
}

// StateOption configures a State.
type StateOption func(*State)

// WithLimit sets the page size used for fetches.
func WithLimit(limit int) StateOption {
	return func(s *State) { s.limit = limit }
}

// WithCacheCapacity bounds the page cache.
func WithCacheCapacity(n int) StateOption {
	return func(s *State) { s.cache = newPageCache(n) }
}

// WithOnChange registers a callback invoked after every committed state
// change. This is the explicit notification channel for UI layers; no
// global registration anywhere.
func WithOnChange(fn func()) StateOption {
	return func(s *State) { s.onChange = fn }
}

const defaultCachePages = 32

// NewState creates a state container starting at page 1 with no search
// term and the "all" category.
func NewState(api CatalogAPI, opts ...StateOption) *State {
	s := &State{
		api:              api,
		page:             1,
		limit:            catalog.DefaultLimit,
		selectedCategory: catalog.CategoryAll,
		items:            []catalog.Product{},
		cache:            newPageCache(defaultCachePages),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *State) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// SetPage records the desired page. It does not fetch; the caller
// dispatches FetchPaginated when ready.
func (s *State) SetPage(p int) {
	s.mu.Lock()
	s.page = p
	s.mu.Unlock()
	s.notify()
}

// SetSearchTerm records the search term and resets the page to 1.
func (s *State) SetSearchTerm(term string) {
	s.mu.Lock()
	s.searchTerm = term
	s.page = 1
	s.mu.Unlock()
	s.notify()
}

// SetSelectedCategory records the category filter and resets the page
// to 1.
func (s *State) SetSelectedCategory(id string) {
	s.mu.Lock()
	s.selectedCategory = id
	s.page = 1
	s.mu.Unlock()
	s.notify()
}

func (s *State) paramsLocked() catalog.ListParams {
	return catalog.ListParams{
		Page:       s.page,
		Limit:      s.limit,
		Search:     s.searchTerm,
		CategoryID: s.selectedCategory,
	}
}

// Params assembles the fetch parameters for the current page and filters.
func (s *State) Params() catalog.ListParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paramsLocked()
}

// FetchPaginated fetches the current page: loading set and error cleared
// up front, then either items/pagination replaced and the page cached, or
// the error recorded with the previous items left intact. A fetch
// superseded by a newer dispatch is discarded on arrival.
func (s *State) FetchPaginated(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	s.lastError = ""
	params := s.paramsLocked()
	s.mu.Unlock()
	s.notify()

	resp, err := s.api.ListProducts(ctx, params)

	s.mu.Lock()
	if seq != s.seq {
		// A newer fetch is in flight or already landed.
		s.mu.Unlock()
		return nil
	}
	s.loading = false
	if err != nil {
		s.lastError = err.Error()
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.items = resp.Data
	s.pagination = resp.Pagination
	s.cache.put(pageKey{
		page:     params.Page,
		limit:    params.Limit,
		search:   params.Search,
		category: params.CategoryID,
	}, resp.Data)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchAll is the legacy bulk path: one page sized at the service maximum,
// ignoring current filters. A malformed response shape (a non-list data
// field) coerces to an empty list rather than propagating.
func (s *State) FetchAll(ctx context.Context) ([]catalog.Product, error) {
	resp, err := s.api.ListProducts(ctx, catalog.ListParams{Page: 1, Limit: catalog.MaxLimit})
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []catalog.Product{}, nil
	}
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Data == nil {
		return []catalog.Product{}, nil
	}
	return resp.Data, nil
}

// CreateProduct creates the product and, once the server confirms,
// appends it to the in-memory items. No optimistic UI before the round
// trip, no rollback.
func (s *State) CreateProduct(ctx context.Context, p catalog.Product) (*catalog.Product, error) {
	created, err := s.api.CreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.items = append(s.items, *created)
	s.cache.purge()
	s.mu.Unlock()
	s.notify()
	return created, nil
}

// UpdateProduct updates the product and replaces the matching item in
// memory after confirmation.
func (s *State) UpdateProduct(ctx context.Context, id string, upd catalog.ProductUpdate) (*catalog.Product, error) {
	updated, err := s.api.UpdateProduct(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == updated.ID {
			s.items[i] = *updated
			break
		}
	}
	s.cache.purge()
	s.mu.Unlock()
	s.notify()
	return updated, nil
}

// DeleteProduct deletes the product and removes the matching item in
// memory after confirmation. A delete the server reports as a no-op
// leaves items untouched.
func (s *State) DeleteProduct(ctx context.Context, id string) (bool, error) {
	deleted, err := s.api.DeleteProduct(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID.Hex() != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.cache.purge()
	s.mu.Unlock()
	s.notify()
	return true, nil
}

// Items returns a copy of the current page of products.
func (s *State) Items() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Product, len(s.items))
	copy(out, s.items)
	return out
}

// Pagination returns the metadata of the last fulfilled fetch.
func (s *State) Pagination() catalog.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

// Page returns the desired page.
func (s *State) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SearchTerm returns the active search term.
func (s *State) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

// SelectedCategory returns the active category filter.
func (s *State) SelectedCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedCategory
}

// Loading reports whether a fetch is in flight.
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the message of the last rejected fetch, empty after a
// pending or fulfilled one.
func (s *State) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// CachedPage peeks at the cache for the given page under the current
// filters. It never mutates items; the cache is an optimization surface
// for the UI, not live state.
func (s *State) CachedPage(page int) ([]catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.get(pageKey{
		page:     page,
		limit:    s.limit,
		search:   s.searchTerm,
		category: s.selectedCategory,
	})
}
