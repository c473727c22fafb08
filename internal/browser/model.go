// Package browser is the terminal catalog browser: debounced search, category
// and sort cycling, paged or virtualized lists, and an item detail screen.
package browser

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/MikeMC777/catalog-browser/internal/client"
	"github.com/MikeMC777/catalog-browser/internal/item"
)

// Fetcher is the subset of the catalog client the browser needs.
type Fetcher interface {
	Query(ctx context.Context, p item.Params, v item.Variant) (*item.ListResponse, error)
	LoadMore(ctx context.Context, p item.Params, v item.Variant, have []item.Item, pg item.Pagination) ([]item.Item, item.Pagination, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (*item.Item, error)
}

type Mode int

const (
	Paged Mode = iota
	Virtual
)

func (m Mode) String() string {
	if m == Virtual {
		return "virtual"
	}
	return "paged"
}

type screen int

const (
	screenList screen = iota
	screenDetail
)

const (
	slotList       = "list"
	slotMore       = "more"
	slotCategories = "categories"
	slotDetail     = "detail"

	virtualPageSize   = 20
	loadMoreThreshold = 5
)

var sortFields = []string{"id", "name", "price", "category", "createdAt"}

type Options struct {
	Mode     Mode
	PageSize int
	Debounce time.Duration
	Logger   *zap.Logger
}

type Model struct {
	api      Fetcher
	lc       *client.Lifecycle
	debounce *client.Debouncer[string]
	keys     keyMap

	input  textinput.Model
	detail viewport.Model

	mode     Mode
	screen   screen
	params   item.Params
	pageSize int

	categories []string
	catIdx     int // 0 means all categories
	sortIdx    int

	items       []item.Item
	pagination  item.Pagination
	cursor      int
	top         int
	loading     bool
	loadingMore bool
	status      string
	selected    *item.Item

	width, height int
	quitting      bool
}

func New(api Fetcher, opts Options) Model {
	if opts.PageSize <= 0 {
		opts.PageSize = item.DefaultLimit
	}

	ti := textinput.New()
	ti.Placeholder = "type / to search"
	ti.Prompt = "Search: "
	ti.CharLimit = 120
	_ = ti.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		api:      api,
		lc:       client.NewLifecycle(opts.Logger),
		debounce: client.NewDebouncer[string](opts.Debounce),
		keys:     defaultKeys(),
		input:    ti,
		detail:   viewport.New(80, 20),
		mode:     opts.Mode,
		params:   item.DefaultParams(),
		pageSize: opts.PageSize,
		loading:  true,
	}
	m.params.Limit = m.limit()
	return m
}

// Lifecycle exposes the model's lifecycle so callers can tear it down.
func (m Model) Lifecycle() *client.Lifecycle { return m.lc }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchPage(), m.fetchCategories())
}

func (m Model) limit() int {
	if m.mode == Virtual {
		return virtualPageSize
	}
	return m.pageSize
}

func (m Model) visibleRows() int {
	if m.height <= 0 {
		return 10
	}
	return max(m.height-8, 3)
}

func (m Model) category() string {
	if m.catIdx == 0 || m.catIdx > len(m.categories) {
		return ""
	}
	return m.categories[m.catIdx-1]
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if rows := m.visibleRows(); m.cursor >= m.top+rows {
		m.top = m.cursor - rows + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

// reset starts over from page 1 and fetches.
func (m *Model) reset() tea.Cmd {
	m.params.Page = 1
	m.params.Limit = m.limit()
	m.cursor, m.top = 0, 0
	return m.fetchPage()
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.debounce.Stop()
	m.lc.Close()
	return tea.Quit
}
