package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Clear     key.Binding
	BinDown   key.Binding
	BinUp     key.Binding
	RangeDown key.Binding
	RangeUp   key.Binding
	Save      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		BinDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "narrower bins"),
		),
		BinUp: key.NewBinding(
			key.WithKeys("=", "+"),
			key.WithHelp("=", "wider bins"),
		),
		RangeDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "zoom in"),
		),
		RangeUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "zoom out"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Clear, k.Save},
		{k.BinDown, k.BinUp},
		{k.RangeDown, k.RangeUp},
		{k.Help, k.Quit},
	}
}
