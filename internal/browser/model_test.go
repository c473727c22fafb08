package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

// ===== Fake del catálogo =====

type fakeAPI struct {
	mu      sync.Mutex
	items   []item.Item
	queries []item.Params
	more    int
	gets    []int64
	err     error
	block   chan struct{}
}

func newFakeAPI(n int) *fakeAPI {
	names := []string{"Lamp", "Desk", "Chair"}
	cats := []string{"Books", "Games", "Tools"}
	f := &fakeAPI{}
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("%s %02d", names[i%3], i)
		cat := cats[i%3]
		price := float64(i * 10)
		f.items = append(f.items, item.Item{ID: int64(i), Name: &name, Category: &cat, Price: &price})
	}
	return f
}

func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) wait(ctx context.Context) error {
	f.mu.Lock()
	block, err := f.block, f.err
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeAPI) Query(ctx context.Context, p item.Params, _ item.Variant) (*item.ListResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, p)
	items := f.items
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	res := item.Query(items, p)
	return &res, nil
}

func (f *fakeAPI) LoadMore(ctx context.Context, p item.Params, _ item.Variant, have []item.Item, pg item.Pagination) ([]item.Item, item.Pagination, error) {
	f.mu.Lock()
	f.more++
	items := f.items
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return have, pg, err
	}
	p.Page = pg.CurrentPage + 1
	res := item.Query(items, p)
	return append(have[:len(have):len(have)], res.Data...), res.Pagination, nil
}

func (f *fakeAPI) Categories(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	items := f.items
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return item.Categories(items), nil
}

func (f *fakeAPI) Get(ctx context.Context, id int64) (*item.Item, error) {
	f.mu.Lock()
	f.gets = append(f.gets, id)
	items := f.items
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.ID == id {
			desc := "fetched"
			it.Description = &desc
			return &it, nil
		}
	}
	return nil, item.ErrNotFound
}

func (f *fakeAPI) lastQuery() item.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func (f *fakeAPI) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// ===== Helpers =====

// run executes cmds synchronously and feeds the browser's own messages back
// into the model until nothing is left to do.
func run(t *testing.T, m Model, cmds ...tea.Cmd) Model {
	t.Helper()
	queue := cmds
	for len(queue) > 0 {
		cmd := queue[0]
		queue = queue[1:]
		if cmd == nil {
			continue
		}
		switch msg := cmd().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case searchMsg, pageMsg, moreMsg, categoriesMsg, detailMsg:
			var next tea.Cmd
			m, next = send(m, msg)
			queue = append(queue, next)
		}
	}
	return m
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = send(m, k)
		m = run(t, m, cmd)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyCtrlC = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func started(t *testing.T, api *fakeAPI, opts Options) Model {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = time.Millisecond
	}
	m := New(api, opts)
	return run(t, m, m.Init())
}

func ids(items []item.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// ===== Tests =====

func TestInit_LoadsFirstPageAndCategories(t *testing.T) {
	api := newFakeAPI(45)
	m := started(t, api, Options{PageSize: 10})

	assert.False(t, m.loading)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids(m.items))
	assert.Equal(t, 5, m.pagination.TotalPages)
	assert.Equal(t, []string{"Books", "Games", "Tools"}, m.categories)

	view := m.View()
	assert.Contains(t, view, "page 1 of 5")
	assert.Contains(t, view, "Desk 01")
}

func TestSearch_OnlyLastKeystrokeQueries(t *testing.T) {
	api := newFakeAPI(45)
	m := started(t, api, Options{})
	m = press(t, m, runes("/"))
	require.True(t, m.input.Focused())
	before := api.queryCount()

	var ticks []tea.Cmd
	for _, r := range "lam" {
		var cmd tea.Cmd
		m, cmd = send(m, runes(string(r)))
		ticks = append(ticks, cmd)
	}
	m = run(t, m, ticks...)

	assert.Equal(t, before+1, api.queryCount())
	assert.Equal(t, "lam", api.lastQuery().Q)
	assert.Equal(t, 1, api.lastQuery().Page)
	assert.Len(t, m.items, 10)
	assert.Equal(t, 15, m.pagination.TotalItems)

	m = press(t, m, keyEsc)
	assert.False(t, m.input.Focused())
}

func TestTypingQDoesNotQuitWhileSearching(t *testing.T) {
	m := started(t, newFakeAPI(5), Options{})
	m = press(t, m, runes("/"), runes("q"))

	assert.False(t, m.quitting)
	assert.Equal(t, "q", m.input.Value())
}

func TestPaging(t *testing.T) {
	api := newFakeAPI(25)
	m := started(t, api, Options{PageSize: 10})

	m = press(t, m, runes("n"))
	assert.Equal(t, []int64{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, ids(m.items))

	m = press(t, m, runes("n"))
	assert.Equal(t, []int64{21, 22, 23, 24, 25}, ids(m.items))
	assert.False(t, m.pagination.HasNextPage)

	count := api.queryCount()
	m = press(t, m, runes("n"))
	assert.Equal(t, count, api.queryCount(), "no request past the last page")

	m = press(t, m, runes("p"), runes("p"))
	assert.Equal(t, 1, m.pagination.CurrentPage)
	count = api.queryCount()
	press(t, m, runes("p"))
	assert.Equal(t, count, api.queryCount(), "no request before the first page")
}

func TestCategoryAndSortCycling(t *testing.T) {
	api := newFakeAPI(45)
	m := started(t, api, Options{})
	m = press(t, m, runes("n"))

	m = press(t, m, runes("c"))
	assert.Equal(t, "Books", api.lastQuery().Category)
	assert.Equal(t, 1, api.lastQuery().Page, "changing a filter resets the page")
	assert.Equal(t, 15, m.pagination.TotalItems)

	m = press(t, m, runes("c"), runes("c"), runes("c"))
	assert.Equal(t, "", api.lastQuery().Category, "wraps back to all categories")

	m = press(t, m, runes("s"))
	assert.Equal(t, "name", api.lastQuery().SortBy)
	m = press(t, m, runes("o"))
	assert.Equal(t, item.SortDesc, api.lastQuery().SortOrder)
	assert.Equal(t, "Lamp 45", *m.items[0].Name)
}

func TestStaleResultIsDropped(t *testing.T) {
	api := newFakeAPI(45)
	m := started(t, api, Options{})

	older := m.fetchPage()
	m.params.Category = "Tools"
	newer := m.fetchPage()

	m = run(t, m, newer)
	m = run(t, m, older)

	assert.Equal(t, 15, m.pagination.TotalItems, "the older response must not overwrite the newer one")
	assert.Equal(t, "Tools", *m.items[0].Category)
}

func TestFailureKeepsPreviousItems(t *testing.T) {
	api := newFakeAPI(45)
	m := started(t, api, Options{})
	shown := ids(m.items)

	api.set(func(f *fakeAPI) { f.err = errors.New("connection refused") })
	m = press(t, m, runes("n"))

	assert.Equal(t, shown, ids(m.items))
	assert.False(t, m.loading)
	assert.Equal(t, msgFetchFailed, m.status)
	assert.Contains(t, m.View(), msgFetchFailed)

	api.set(func(f *fakeAPI) { f.err = nil })
	m = press(t, m, runes("n"))
	assert.Empty(t, m.status)
}

func TestQuit_CancelsInFlightRequests(t *testing.T) {
	api := newFakeAPI(45)
	api.block = make(chan struct{})
	m := New(api, Options{})
	initCmd := m.Init()

	m, cmd := send(m, keyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Lifecycle().Closed())

	batch, ok := initCmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		switch msg := c().(type) {
		case pageMsg:
			assert.ErrorIs(t, msg.err, context.Canceled)
		case categoriesMsg:
			assert.ErrorIs(t, msg.err, context.Canceled)
		}
	}
	assert.Empty(t, m.View())
}

func TestVirtual_LoadsMoreNearTheEnd(t *testing.T) {
	api := newFakeAPI(45)
	m := started(t, api, Options{Mode: Virtual})
	require.Len(t, m.items, virtualPageSize)

	for i := 0; i < 14; i++ {
		m = press(t, m, keyDown)
	}
	assert.Equal(t, 0, api.more, "not close enough to the end yet")

	m = press(t, m, keyDown)
	assert.Equal(t, 1, api.more)
	assert.Len(t, m.items, 40)
	assert.Equal(t, 15, m.cursor)

	for i := 0; i < 30; i++ {
		m = press(t, m, keyDown)
	}
	assert.Len(t, m.items, 45)
	assert.False(t, m.pagination.HasNextPage)
	assert.Equal(t, 44, m.cursor)
	assert.Contains(t, m.View(), "45 of 45 items")
}

func TestModeToggleRefetchesWithNewLimit(t *testing.T) {
	api := newFakeAPI(45)
	m := started(t, api, Options{PageSize: 5})
	assert.Len(t, m.items, 5)

	m = press(t, m, runes("v"))
	assert.Equal(t, Virtual, m.mode)
	assert.Equal(t, virtualPageSize, api.lastQuery().Limit)
	assert.Len(t, m.items, virtualPageSize)
}

func TestDetail_OpenAndBack(t *testing.T) {
	api := newFakeAPI(10)
	m := started(t, api, Options{})
	m = press(t, m, keyDown, keyEnter)

	require.Equal(t, screenDetail, m.screen)
	require.NotNil(t, m.selected)
	assert.Equal(t, int64(2), m.selected.ID)
	assert.Equal(t, "fetched", *m.selected.Description)
	assert.Contains(t, m.View(), "Item #2")

	m = press(t, m, keyEsc)
	assert.Equal(t, screenList, m.screen)
	assert.Nil(t, m.selected)
}

func TestDetail_ResultAfterBackIsDropped(t *testing.T) {
	api := newFakeAPI(10)
	m := started(t, api, Options{})

	m, cmd := send(m, keyEnter)
	m = press(t, m, keyEsc)
	m = run(t, m, cmd)

	assert.Equal(t, screenList, m.screen)
	assert.Nil(t, m.selected)
}

func TestCursorWindowFollowsSelection(t *testing.T) {
	m := started(t, newFakeAPI(10), Options{})
	m, _ = send(m, tea.WindowSizeMsg{Width: 80, Height: 11})
	require.Equal(t, 3, m.visibleRows())

	m = press(t, m, keyDown, keyDown, keyDown, keyDown)
	assert.Equal(t, 4, m.cursor)
	assert.Equal(t, 2, m.top)

	m = press(t, m, runes("k"), runes("k"), runes("k"))
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, 1, m.top)
}
