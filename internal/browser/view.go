package browser

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.screen == screenDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Catalog"))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(m.summary()))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render(row("ID", "NAME", "CATEGORY", "PRICE")))
	b.WriteString("\n")

	switch {
	case m.loading && len(m.items) == 0:
		b.WriteString(dimStyle.Render("  loading..."))
		b.WriteString("\n")
	case len(m.items) == 0:
		b.WriteString(dimStyle.Render("  no items"))
		b.WriteString("\n")
	default:
		end := min(m.top+m.visibleRows(), len(m.items))
		for i := m.top; i < end; i++ {
			it := m.items[i]
			line := row(strconv.FormatInt(it.ID, 10), str(it.Name), str(it.Category), price(it.Price))
			if i == m.cursor {
				b.WriteString(selectedBorderStyle.Render("┃ "))
				b.WriteString(selectedStyle.Render(line))
			} else {
				b.WriteString("  ")
				b.WriteString(normalStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.footer()))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(helpLine(m.keys.listHelp(m.mode))))
	return b.String()
}

func (m Model) summary() string {
	cat := m.params.Category
	if cat == "" {
		cat = "all"
	}
	return fmt.Sprintf("%s %s category: %s %s sort: %s %s %s %s",
		m.mode, iconDot, cat, iconDot, m.params.SortBy, m.params.SortOrder, iconDot, m.loadState())
}

func (m Model) loadState() string {
	switch {
	case m.loading:
		return "loading"
	case m.loadingMore:
		return "loading more"
	}
	return "ready"
}

func (m Model) footer() string {
	pg := m.pagination
	if m.mode == Virtual {
		return fmt.Sprintf("%d of %d items", len(m.items), pg.TotalItems)
	}
	return fmt.Sprintf("page %d of %d %s %d items", pg.CurrentPage, pg.TotalPages, iconDot, pg.TotalItems)
}

func (m Model) viewDetail() string {
	title := "Item"
	if m.selected != nil {
		title = fmt.Sprintf("Item #%d", m.selected.ID)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		m.detail.View(),
		helpStyle.Render(helpLine([]key.Binding{m.keys.Back, m.keys.Quit})),
	)
}

func renderDetail(it item.Item) string {
	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("ID", strconv.FormatInt(it.ID, 10))
	field("Name", str(it.Name))
	field("Category", str(it.Category))
	field("Price", price(it.Price))
	field("Created", str(it.CreatedAt))
	if it.Description != nil {
		field("Description", *it.Description)
	}
	if len(it.Tags) > 0 {
		field("Tags", strings.Join(it.Tags, ", "))
	}

	keys := make([]string, 0, len(it.Extra))
	for k := range it.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field(k, string(it.Extra[k]))
	}
	return b.String()
}

func row(id, name, category, price string) string {
	return fmt.Sprintf("%-6s %-28s %-14s %10s", id, truncate(name, 28), truncate(category, 14), price)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func str(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func price(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " "+iconDot+" ")
}

// Run shows the browser until the user quits or ctx is done. Every request
// still in flight is canceled on the way out.
func Run(ctx context.Context, api Fetcher, opts Options) error {
	m := New(api, opts)
	defer m.Lifecycle().Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
