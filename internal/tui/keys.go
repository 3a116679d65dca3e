package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/panels/internal/config"
)

type keyMap struct {
	Quit      key.Binding
	Search    key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	Select    key.Binding
	Favorite  key.Binding
	Favorites key.Binding
	OpenImage key.Binding
	Explain   key.Binding
	Retry     key.Binding
	Back      key.Binding
	Help      key.Binding
}

func bind(k, fallback, desc string) key.Binding {
	if k == "" {
		k = fallback
	}
	return key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc))
}

func newKeyMap(b config.KeyBindings) keyMap {
	quit := bind(b.Quit, "q", "quit")
	quit.SetKeys(quit.Keys()[0], "ctrl+c")

	return keyMap{
		Quit:      quit,
		Search:    bind(b.Search, "/", "search"),
		NextPage:  bind(b.NextPage, "n", "next page"),
		PrevPage:  bind(b.PrevPage, "p", "previous page"),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Favorite:  bind(b.Favorite, "f", "toggle favorite"),
		Favorites: bind(b.Favorites, "F", "favorites"),
		OpenImage: bind(b.OpenImage, "o", "open image"),
		Explain:   bind(b.Explain, "e", "explain"),
		Retry:     bind(b.Retry, "r", "retry"),
		Back:      bind(b.Back, "esc", "back"),
		Help:      bind(b.Help, "?", "help"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevPage, k.NextPage, k.Search, k.Select, k.Favorite, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevPage, k.NextPage, k.Select, k.Back},
		{k.Search, k.Retry},
		{k.Favorite, k.Favorites},
		{k.OpenImage, k.Explain},
		{k.Help, k.Quit},
	}
}
