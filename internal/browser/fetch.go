package browser

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MikeMC777/catalog-browser/internal/client"
	"github.com/MikeMC777/catalog-browser/internal/item"
)

type (
	searchMsg struct{ seq uint64 }

	pageMsg struct {
		ticket client.Ticket
		res    *item.ListResponse
		err    error
	}

	moreMsg struct {
		ticket client.Ticket
		items  []item.Item
		pg     item.Pagination
		err    error
	}

	categoriesMsg struct {
		ticket client.Ticket
		cats   []string
		err    error
	}

	detailMsg struct {
		ticket client.Ticket
		it     *item.Item
		err    error
	}
)

// Each fetch begins its slot on the update goroutine, so a newer request
// cancels the older one before the older one's command even runs.

func (m *Model) fetchPage() tea.Cmd {
	m.lc.Slot(slotMore).Cancel()
	m.loadingMore = false
	m.loading = true

	ctx, t := m.lc.Begin(context.Background(), slotList)
	api, p := m.api, m.params
	return func() tea.Msg {
		res, err := api.Query(ctx, p, item.Basic)
		return pageMsg{ticket: t, res: res, err: err}
	}
}

func (m *Model) fetchCategories() tea.Cmd {
	ctx, t := m.lc.Begin(context.Background(), slotCategories)
	api := m.api
	return func() tea.Msg {
		cats, err := api.Categories(ctx)
		return categoriesMsg{ticket: t, cats: cats, err: err}
	}
}

// maybeLoadMore fetches the next page once the cursor nears the end of the
// accumulated rows in virtual mode.
func (m *Model) maybeLoadMore() tea.Cmd {
	if m.mode != Virtual || m.loading || m.loadingMore || !m.pagination.HasNextPage {
		return nil
	}
	if m.cursor < len(m.items)-loadMoreThreshold {
		return nil
	}
	m.loadingMore = true

	ctx, t := m.lc.Begin(context.Background(), slotMore)
	api, p, have, pg := m.api, m.params, m.items, m.pagination
	return func() tea.Msg {
		items, next, err := api.LoadMore(ctx, p, item.Basic, have, pg)
		return moreMsg{ticket: t, items: items, pg: next, err: err}
	}
}

func (m *Model) fetchDetail(id int64) tea.Cmd {
	ctx, t := m.lc.Begin(context.Background(), slotDetail)
	api := m.api
	return func() tea.Msg {
		it, err := api.Get(ctx, id)
		return detailMsg{ticket: t, it: it, err: err}
	}
}
