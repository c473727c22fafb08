package browser

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Search    key.Binding
	Blur      key.Binding
	Category  key.Binding
	Sort      key.Binding
	Order     key.Binding
	Next      key.Binding
	Prev      key.Binding
	Mode      key.Binding
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	Back      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Blur:      key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "done")),
		Category:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort field")),
		Order:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "asc/desc")),
		Next:      key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next page")),
		Prev:      key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "prev page")),
		Mode:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "paged/virtual")),
		Up:        key.NewBinding(key.WithKeys("up", "k")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k keyMap) listHelp(mode Mode) []key.Binding {
	out := []key.Binding{k.Search, k.Category, k.Sort, k.Order}
	if mode == Paged {
		out = append(out, k.Next, k.Prev)
	}
	return append(out, k.Mode, k.Open, k.Quit)
}
