package browser

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MikeMC777/catalog-browser/internal/client"
	"github.com/MikeMC777/catalog-browser/internal/item"
)

const msgFetchFailed = "request failed, showing previous results"

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-4, 3)
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, m.quit()
		}
		if m.screen == screenDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)

	case searchMsg:
		q, ok := m.debounce.Fire(msg.seq)
		if !ok {
			return m, nil
		}
		m.params.Q = q
		return m, m.reset()

	case pageMsg:
		switch m.lc.Settle(msg.ticket, msg.err) {
		case client.Applied:
			m.loading = false
			m.status = ""
			m.items = msg.res.Data
			m.pagination = msg.res.Pagination
			m.clampCursor()
		case client.Failed:
			m.loading = false
			m.status = msgFetchFailed
		}
		return m, nil

	case moreMsg:
		switch m.lc.Settle(msg.ticket, msg.err) {
		case client.Applied:
			m.loadingMore = false
			m.status = ""
			m.items = msg.items
			m.pagination = msg.pg
		case client.Failed:
			m.loadingMore = false
			m.status = msgFetchFailed
		}
		return m, nil

	case categoriesMsg:
		if m.lc.Settle(msg.ticket, msg.err) == client.Applied {
			m.categories = msg.cats
			if m.catIdx > len(m.categories) {
				m.catIdx = 0
			}
		}
		return m, nil

	case detailMsg:
		if m.lc.Settle(msg.ticket, msg.err) == client.Applied && m.screen == screenDetail {
			m.selected = msg.it
			m.detail.SetContent(renderDetail(*msg.it))
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		if key.Matches(msg, m.keys.Blur) {
			m.input.Blur()
			return m, nil
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != before {
			seq := m.debounce.Push(v)
			tick := tea.Tick(m.debounce.Delay, func(time.Time) tea.Msg { return searchMsg{seq: seq} })
			return m, tea.Batch(cmd, tick)
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.Search):
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Category):
		m.catIdx = (m.catIdx + 1) % (len(m.categories) + 1)
		m.params.Category = m.category()
		return m, m.reset()

	case key.Matches(msg, m.keys.Sort):
		m.sortIdx = (m.sortIdx + 1) % len(sortFields)
		m.params.SortBy = sortFields[m.sortIdx]
		return m, m.reset()

	case key.Matches(msg, m.keys.Order):
		if m.params.SortOrder == item.SortDesc {
			m.params.SortOrder = item.SortAsc
		} else {
			m.params.SortOrder = item.SortDesc
		}
		return m, m.reset()

	case key.Matches(msg, m.keys.Next):
		if m.mode != Paged || !m.pagination.HasNextPage {
			return m, nil
		}
		m.params.Page++
		m.cursor, m.top = 0, 0
		return m, m.fetchPage()

	case key.Matches(msg, m.keys.Prev):
		if m.mode != Paged || m.params.Page <= 1 {
			return m, nil
		}
		m.params.Page--
		m.cursor, m.top = 0, 0
		return m, m.fetchPage()

	case key.Matches(msg, m.keys.Mode):
		if m.mode == Paged {
			m.mode = Virtual
		} else {
			m.mode = Paged
		}
		m.items = nil
		return m, m.reset()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.clampCursor()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
			m.clampCursor()
		}
		return m, m.maybeLoadMore()

	case key.Matches(msg, m.keys.Open):
		if len(m.items) == 0 {
			return m, nil
		}
		it := m.items[m.cursor]
		m.screen = screenDetail
		m.selected = &it
		m.detail.SetContent(renderDetail(it))
		m.detail.GotoTop()
		return m, m.fetchDetail(it.ID)
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Back):
		m.lc.Slot(slotDetail).Cancel()
		m.screen = screenList
		m.selected = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}
