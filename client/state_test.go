package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pod-catalog/internal/catalog"
)

// --- Fake API ---

type listCall struct {
	params  catalog.ListParams
	resp    *catalog.ListResponse
	err     error
	started chan struct{} // closed when the call begins, if non-nil
	release chan struct{} // blocks the call until closed, if non-nil
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []*listCall
	next  int

	createResp *catalog.Product
	updateResp *catalog.Product
	deleted    bool
	err        error
}

func (f *fakeAPI) ListProducts(_ context.Context, params catalog.ListParams) (*catalog.ListResponse, error) {
	f.mu.Lock()
	if f.next >= len(f.calls) {
		f.mu.Unlock()
		return nil, fmt.Errorf("unexpected list call %d", f.next)
	}
	call := f.calls[f.next]
	f.next++
	f.mu.Unlock()

	call.params = params
	if call.started != nil {
		close(call.started)
	}
	if call.release != nil {
		<-call.release
	}
	return call.resp, call.err
}

func (f *fakeAPI) CreateProduct(context.Context, catalog.Product) (*catalog.Product, error) {
	return f.createResp, f.err
}

func (f *fakeAPI) UpdateProduct(context.Context, string, catalog.ProductUpdate) (*catalog.Product, error) {
	return f.updateResp, f.err
}

func (f *fakeAPI) DeleteProduct(context.Context, string) (bool, error) {
	return f.deleted, f.err
}

func namedProduct(name string) catalog.Product {
	return catalog.Product{ID: primitive.NewObjectID(), Name: name, Price: 10}
}

func pageResponse(page int, products ...catalog.Product) *catalog.ListResponse {
	return &catalog.ListResponse{
		Data:       products,
		Pagination: catalog.NewPagination(page, catalog.DefaultLimit, int64(len(products))),
	}
}

// --- Tests ---

func TestFilterSettersResetPage(t *testing.T) {
	s := NewState(&fakeAPI{})

	s.SetPage(3)
	assert.Equal(t, 3, s.Page())

	s.SetSearchTerm("foo")
	assert.Equal(t, 1, s.Page(), "changing the search term returns to page 1")

	s.SetPage(2)
	s.SetSelectedCategory("c1")
	assert.Equal(t, 1, s.Page(), "changing the category returns to page 1")

	params := s.Params()
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, "foo", params.Search)
	assert.Equal(t, "c1", params.CategoryID)
}

func TestFetchPaginatedFulfilled(t *testing.T) {
	mug := namedProduct("Mug")
	api := &fakeAPI{calls: []*listCall{{resp: pageResponse(1, mug)}}}

	var notifications int
	s := NewState(api, WithOnChange(func() { notifications++ }))

	require.NoError(t, s.FetchPaginated(context.Background()))

	assert.False(t, s.Loading())
	assert.Empty(t, s.LastError())
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "Mug", s.Items()[0].Name)
	assert.Equal(t, int64(1), s.Pagination().Total)
	assert.Greater(t, notifications, 0)

	cached, ok := s.CachedPage(1)
	require.True(t, ok, "fulfilled page is written to the cache")
	assert.Equal(t, "Mug", cached[0].Name)
}

func TestFetchPaginatedRejectedKeepsLastGoodPage(t *testing.T) {
	mug := namedProduct("Mug")
	api := &fakeAPI{calls: []*listCall{
		{resp: pageResponse(1, mug)},
		{err: errors.New("upstream timeout")},
	}}
	s := NewState(api)

	require.NoError(t, s.FetchPaginated(context.Background()))
	require.Error(t, s.FetchPaginated(context.Background()))

	assert.False(t, s.Loading())
	assert.Equal(t, "upstream timeout", s.LastError())
	require.Len(t, s.Items(), 1, "prior results stay visible on failure")
	assert.Equal(t, "Mug", s.Items()[0].Name)
}

func TestFetchPaginatedFencing(t *testing.T) {
	stale := namedProduct("Stale")
	fresh := namedProduct("Fresh")

	slow := &listCall{
		resp:    pageResponse(1, stale),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	fast := &listCall{resp: pageResponse(2, fresh)}
	api := &fakeAPI{calls: []*listCall{slow, fast}}
	s := NewState(api)

	done := make(chan error, 1)
	go func() { done <- s.FetchPaginated(context.Background()) }()
	<-slow.started

	// A second dispatch supersedes the in-flight one.
	s.SetPage(2)
	require.NoError(t, s.FetchPaginated(context.Background()))
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "Fresh", s.Items()[0].Name)

	// Let the stale fetch land; it must be discarded, not committed.
	close(slow.release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("superseded fetch did not return")
	}

	assert.Equal(t, "Fresh", s.Items()[0].Name, "stale fulfillment must not clobber newer state")
	assert.False(t, s.Loading())
}

func TestCacheKeyedByFilters(t *testing.T) {
	mug := namedProduct("Mug")
	api := &fakeAPI{calls: []*listCall{{resp: pageResponse(1, mug)}}}
	s := NewState(api)

	require.NoError(t, s.FetchPaginated(context.Background()))
	_, ok := s.CachedPage(1)
	require.True(t, ok)

	s.SetSelectedCategory("c1")
	_, ok = s.CachedPage(1)
	assert.False(t, ok, "a filter change must not surface a page cached under other filters")
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	api := &fakeAPI{calls: []*listCall{
		{resp: pageResponse(1, namedProduct("P1"))},
		{resp: pageResponse(2, namedProduct("P2"))},
		{resp: pageResponse(3, namedProduct("P3"))},
	}}
	s := NewState(api, WithCacheCapacity(2))

	for page := 1; page <= 3; page++ {
		s.SetPage(page)
		require.NoError(t, s.FetchPaginated(context.Background()))
	}

	_, ok := s.CachedPage(1)
	assert.False(t, ok, "oldest page evicted at capacity")
	_, ok = s.CachedPage(2)
	assert.True(t, ok)
	_, ok = s.CachedPage(3)
	assert.True(t, ok)
}

func TestMutationsPatchItems(t *testing.T) {
	existing := namedProduct("Mug")
	api := &fakeAPI{calls: []*listCall{{resp: pageResponse(1, existing)}}}
	s := NewState(api)
	require.NoError(t, s.FetchPaginated(context.Background()))

	// Create appends after server confirmation.
	created := namedProduct("Poster")
	api.createResp = &created
	_, err := s.CreateProduct(context.Background(), catalog.Product{Name: "Poster", Price: 5})
	require.NoError(t, err)
	require.Len(t, s.Items(), 2)
	assert.Equal(t, "Poster", s.Items()[1].Name)

	// Update replaces by id.
	renamed := existing
	renamed.Name = "Travel Mug"
	api.updateResp = &renamed
	_, err = s.UpdateProduct(context.Background(), existing.ID.Hex(), catalog.ProductUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Travel Mug", s.Items()[0].Name)

	// Delete removes by id.
	api.deleted = true
	deleted, err := s.DeleteProduct(context.Background(), existing.ID.Hex())
	require.NoError(t, err)
	assert.True(t, deleted)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "Poster", s.Items()[0].Name)

	// A no-op delete leaves items untouched.
	api.deleted = false
	deleted, err = s.DeleteProduct(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, s.Items(), 1)
}

func TestFetchAllCoercesMalformedShape(t *testing.T) {
	// The server here answers with a non-list data field; the legacy bulk
	// path coerces that to an empty list instead of surfacing a type
	// error to call sites.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"unexpected": "shape"}, "pagination": {}}`))
	}))
	defer srv.Close()

	s := NewState(New(srv.URL))
	items, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestFetchAllNilDataCoercedToEmpty(t *testing.T) {
	api := &fakeAPI{calls: []*listCall{{resp: &catalog.ListResponse{}}}}
	s := NewState(api)

	items, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	assert.Equal(t, catalog.MaxLimit, api.calls[0].params.Limit, "bulk path asks for the maximum page size")
}
