package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

func strp(s string) *string   { return &s }
func fltp(f float64) *float64 { return &f }

// fakeAPI serves the catalog endpoints from memory through the real query
// pipeline.
type fakeAPI struct {
	mu    sync.Mutex
	items []item.Item
	hits  atomic.Int64
	// failPage makes that page of the list endpoint answer 500.
	failPage int
	// block holds every list request until the client gives up.
	block bool
}

func (f *fakeAPI) set(fn func(*fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.mu.Lock()
	items := append([]item.Item(nil), f.items...)
	failPage, block := f.failPage, f.block
	f.mu.Unlock()

	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.URL.Path == "/api/items" && r.Method == http.MethodGet,
		r.URL.Path == "/api/items/search":
		if block {
			<-r.Context().Done()
			return
		}
		variant := item.Basic
		if strings.HasSuffix(r.URL.Path, "/search") {
			variant = item.Advanced
		}
		p := item.ParseParams(r.URL.Query(), variant)
		if failPage != 0 && p.Page == failPage {
			writeJSON(http.StatusInternalServerError, item.ServerError{Message: "storage unavailable"})
			return
		}
		writeJSON(http.StatusOK, item.Query(items, p))
	case r.URL.Path == "/api/items" && r.Method == http.MethodPost:
		var it item.Item
		if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
			writeJSON(http.StatusBadRequest, item.HTTPError{Error: "invalid JSON body"})
			return
		}
		it.ID = int64(len(items) + 100)
		f.mu.Lock()
		f.items = append(f.items, it)
		f.mu.Unlock()
		writeJSON(http.StatusCreated, it)
	case r.URL.Path == "/api/items/categories":
		writeJSON(http.StatusOK, item.CategoriesResponse{Categories: item.Categories(items)})
	case r.URL.Path == "/api/stats":
		writeJSON(http.StatusOK, item.ComputeStats(items))
	case strings.HasPrefix(r.URL.Path, "/api/items/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/items/"), 10, 64)
		for _, it := range items {
			if it.ID == id {
				writeJSON(http.StatusOK, it)
				return
			}
		}
		writeJSON(http.StatusNotFound, item.HTTPError{Error: "Item not found"})
	default:
		writeJSON(http.StatusNotFound, item.HTTPError{Error: "Not found"})
	}
}

func catalog(n int) []item.Item {
	out := make([]item.Item, n)
	for i := range out {
		out[i] = item.Item{
			ID:       int64(i + 1),
			Name:     strp(fmt.Sprintf("Item %02d", i+1)),
			Category: strp([]string{"Books", "Games"}[i%2]),
			Price:    fltp(float64(10 * (i + 1))),
		}
	}
	return out
}

func newFake(t *testing.T, items []item.Item) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{items: items}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, New(srv.URL+"/", 5*time.Second)
}

func TestClient_ListAndSearch(t *testing.T) {
	_, c := newFake(t, catalog(25))
	ctx := context.Background()

	p := item.DefaultParams()
	p.Category = "books"
	p.Limit = 5
	res, err := c.List(ctx, p)
	require.NoError(t, err)
	assert.Len(t, res.Data, 5)
	assert.Equal(t, 13, res.Pagination.TotalItems)
	assert.Equal(t, 3, res.Pagination.TotalPages)

	p = item.DefaultParams()
	p.MinPrice, p.MaxPrice = fltp(100), fltp(150)
	res, err = c.Search(ctx, p)
	require.NoError(t, err)
	assert.Len(t, res.Data, 6)
	require.NotNil(t, res.Filters.MaxPrice)
	assert.Equal(t, 150.0, *res.Filters.MaxPrice)
}

func TestClient_GetCreateCategoriesStats(t *testing.T) {
	_, c := newFake(t, catalog(3))
	ctx := context.Background()

	it, err := c.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Item 02", *it.Name)

	_, err = c.Get(ctx, 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, item.ErrNotFound)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Item not found", apiErr.Message)

	created, err := c.Create(ctx, item.Item{Name: strp("New"), Price: fltp(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(103), created.ID)

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Books", "Games"}, cats)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 16.25, stats.AveragePrice)
}

func TestClient_CanceledIsDistinguished(t *testing.T) {
	f, c := newFake(t, catalog(3))
	f.set(func(f *fakeAPI) { f.block = true })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, err := c.List(ctx, item.DefaultParams())
	assert.ErrorIs(t, err, ErrCanceled)

	// deadline expiry is a real failure
	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.List(ctx, item.DefaultParams())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCanceled)
}

func TestClient_ServerErrorIsAPIError(t *testing.T) {
	f, c := newFake(t, catalog(3))
	f.set(func(f *fakeAPI) { f.failPage = 1 })

	_, err := c.List(context.Background(), item.DefaultParams())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "storage unavailable", apiErr.Message)
	assert.False(t, errors.Is(err, item.ErrNotFound))
}

func TestFetchAll_PageOrder(t *testing.T) {
	f, c := newFake(t, catalog(23))
	c.MaxParallel = 2

	p := item.DefaultParams()
	p.Limit = 5
	p.SortBy = "price"
	p.SortOrder = item.SortDesc
	all, err := c.FetchAll(context.Background(), p, item.Basic)
	require.NoError(t, err)
	require.Len(t, all, 23)
	for i, it := range all {
		assert.Equal(t, int64(23-i), it.ID)
	}
	assert.EqualValues(t, 5, f.hits.Load())
}

func TestFetchAll_SinglePageAndZeroLimit(t *testing.T) {
	f, c := newFake(t, catalog(3))

	all, err := c.FetchAll(context.Background(), item.DefaultParams(), item.Basic)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	p := item.DefaultParams()
	p.Limit = 0
	all, err = c.FetchAll(context.Background(), p, item.Basic)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.EqualValues(t, 2, f.hits.Load())
}

func TestFetchAll_PageFailure(t *testing.T) {
	f, c := newFake(t, catalog(30))
	f.set(func(f *fakeAPI) { f.failPage = 3 })

	p := item.DefaultParams()
	p.Limit = 5
	_, err := c.FetchAll(context.Background(), p, item.Basic)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestLoadMore(t *testing.T) {
	f, c := newFake(t, catalog(12))
	ctx := context.Background()

	p := item.DefaultParams()
	p.Limit = 5
	first, err := c.List(ctx, p)
	require.NoError(t, err)

	have, pg, err := c.LoadMore(ctx, p, item.Basic, first.Data, first.Pagination)
	require.NoError(t, err)
	assert.Len(t, have, 10)
	assert.Equal(t, 2, pg.CurrentPage)

	have, pg, err = c.LoadMore(ctx, p, item.Basic, have, pg)
	require.NoError(t, err)
	assert.Len(t, have, 12)
	assert.False(t, pg.HasNextPage)

	before := f.hits.Load()
	again, _, err := c.LoadMore(ctx, p, item.Basic, have, pg)
	require.NoError(t, err)
	assert.Len(t, again, 12)
	assert.Equal(t, before, f.hits.Load(), "no request past the last page")
}
