package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/panels/internal/browse"
	"github.com/pders01/panels/internal/comic"
	"github.com/pders01/panels/internal/debuglog"
)

type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App) *KeyHandler {
	return &KeyHandler{app: app, keys: app.keys}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kh.app.status = ""
	prev := kh.app.view
	defer func() {
		if kh.app.view != prev {
			debuglog.Debugf("view %s -> %s", prev, kh.app.view)
		}
	}()

	if kh.app.view == ViewSearch && kh.app.searchInput.Focused() {
		return kh.handleSearchInput(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.app, kh.app.updateActive(msg)
}

func (kh *KeyHandler) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.searchInput.Blur()
		a.view = ViewBrowse
		return a, nil
	case "enter":
		query := strings.TrimSpace(a.searchInput.Value())
		a.searchInput.Blur()
		a.view = ViewBrowse
		return a, a.runSearch(query)
	}

	prev := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if a.searchInput.Value() != prev {
		return a, tea.Batch(cmd, a.queryChanged(a.searchInput.Value()))
	}
	return a, cmd
}

func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch {
	case key.Matches(msg, kh.keys.Quit):
		return a, tea.Quit, true
	case key.Matches(msg, kh.keys.Help):
		if a.view == ViewHelp {
			a.view = a.previousView
		} else {
			a.previousView = a.view
			a.view = ViewHelp
		}
		return a, nil, true
	}

	switch a.view {
	case ViewBrowse, ViewSearch:
		return kh.handleBrowseKeys(msg)
	case ViewDetail:
		return kh.handleDetailKeys(msg)
	case ViewFavorites:
		return kh.handleFavoritesKeys(msg)
	case ViewHelp:
		if key.Matches(msg, kh.keys.Back) {
			a.view = a.previousView
			return a, nil, true
		}
		return a, nil, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch {
	case key.Matches(msg, kh.keys.NextPage):
		return a, a.nextPage(), true
	case key.Matches(msg, kh.keys.PrevPage):
		return a, a.previousPage(), true
	case key.Matches(msg, kh.keys.Search):
		a.view = ViewSearch
		if a.state.Mode != browse.ModeSearchResults {
			a.searchInput.SetValue("")
		}
		return a, a.searchInput.Focus(), true
	case key.Matches(msg, kh.keys.Back):
		if a.view == ViewSearch {
			a.view = ViewBrowse
		}
		if a.state.Mode == browse.ModeSearchResults {
			a.searchInput.SetValue("")
			return a, a.clearSearch(), true
		}
		return a, nil, true
	case key.Matches(msg, kh.keys.Retry):
		a.setStatus(MsgLoadingLatest, StatusInfo)
		return a, a.loadLatest(), true
	case key.Matches(msg, kh.keys.Favorites):
		a.previousView = ViewBrowse
		a.view = ViewFavorites
		return a, a.loadFavorites(), true
	case key.Matches(msg, kh.keys.Select):
		return kh.openDetail(ViewBrowse)
	}
	return kh.handleComicKeys(msg)
}

func (kh *KeyHandler) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	if key.Matches(msg, kh.keys.Back) {
		a.view = a.detailFrom
		a.current = nil
		return a, nil, true
	}
	return kh.handleComicKeys(msg)
}

func (kh *KeyHandler) handleFavoritesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Back), key.Matches(msg, kh.keys.Favorites):
		a.view = ViewBrowse
		return a, nil, true
	case key.Matches(msg, kh.keys.Select):
		return kh.openDetail(ViewFavorites)
	}
	return kh.handleComicKeys(msg)
}

// handleComicKeys handles the actions on the selected comic shared by
// every view that shows one.
func (kh *KeyHandler) handleComicKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	var action func(c comic.Comic) tea.Cmd
	switch {
	case key.Matches(msg, kh.keys.Favorite):
		action = func(c comic.Comic) tea.Cmd {
			a.setStatus(MsgSavingFavorite, StatusInfo)
			return a.toggleFavorite(c)
		}
	case key.Matches(msg, kh.keys.OpenImage):
		action = func(c comic.Comic) tea.Cmd {
			a.setStatus(MsgOpening, StatusInfo)
			return a.openImage(c)
		}
	case key.Matches(msg, kh.keys.Explain):
		action = func(c comic.Comic) tea.Cmd {
			a.setStatus(MsgOpening, StatusInfo)
			return a.openExplanation(c)
		}
	default:
		return a, nil, false
	}

	c, ok := a.selectedComic()
	if !ok {
		a.setStatus(MsgNothingSelected, StatusWarn)
		return a, nil, true
	}
	return a, action(c), true
}

func (kh *KeyHandler) openDetail(from View) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	c, ok := a.selectedComic()
	if !ok {
		a.setStatus(MsgNothingSelected, StatusWarn)
		return a, nil, true
	}
	a.current = &c
	a.detailFrom = from
	a.view = ViewDetail
	a.viewport.SetContent(a.theme.Help.Render("Rendering…"))
	return a, a.renderDetail(c), true
}

// HelpForCurrentView lists the bindings shown in the status bar.
func (kh *KeyHandler) HelpForCurrentView() []key.Binding {
	k := kh.keys
	switch kh.app.view {
	case ViewSearch:
		if kh.app.searchInput.Focused() {
			return []key.Binding{
				key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
				key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
			}
		}
		return k.ShortHelp()
	case ViewDetail:
		return []key.Binding{k.Back, k.Favorite, k.OpenImage, k.Explain, k.Quit}
	case ViewFavorites:
		return []key.Binding{k.Select, k.Favorite, k.OpenImage, k.Back, k.Quit}
	case ViewHelp:
		return []key.Binding{k.Back, k.Quit}
	}

	bindings := []key.Binding{}
	if kh.app.state.CanGoPrevious {
		bindings = append(bindings, k.PrevPage)
	}
	if kh.app.state.CanGoNext {
		bindings = append(bindings, k.NextPage)
	}
	if kh.app.state.Mode == browse.ModeSearchResults {
		bindings = append(bindings, k.Back)
	}
	if kh.app.state.Err != nil && kh.app.state.Err.Kind == browse.InitializationFailure {
		bindings = append(bindings, k.Retry)
	}
	return append(bindings, k.Search, k.Select, k.Favorite, k.Favorites, k.Help, k.Quit)
}
