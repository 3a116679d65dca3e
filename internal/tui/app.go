package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/panels/internal/browse"
	"github.com/pders01/panels/internal/comic"
	"github.com/pders01/panels/internal/config"
	"github.com/pders01/panels/internal/storage"
)

// FavoriteStore is the part of storage.Store the TUI uses.
type FavoriteStore interface {
	ToggleFavorite(c comic.Comic, image []byte) (bool, error)
	GetFavorites() ([]*storage.Favorite, error)
	GetImage(num int) ([]byte, error)
}

type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

type Opener interface {
	Open(target string) error
	OpenImage(num int, sourceURL string, data []byte) (string, error)
}

// Deps are the collaborators of the App. Store, Images and Opener may be
// nil; the features that need them report an error instead.
type Deps struct {
	Controller *browse.Controller
	Store      FavoriteStore
	Images     ImageFetcher
	Opener     Opener
	BaseURL    string
}

type App struct {
	config     *config.Config
	ctx        context.Context
	cancel     context.CancelFunc
	ctrl       *browse.Controller
	store      FavoriteStore
	images     ImageFetcher
	opener     Opener
	baseURL    string
	keys       keyMap
	keyHandler *KeyHandler
	theme      *Theme

	comicList   list.Model
	favList     list.Model
	searchInput textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model
	help        help.Model

	view         View
	previousView View
	state        browse.State
	states       chan browse.State
	unsubscribe  func()
	favorites    map[int]bool
	current      *comic.Comic
	detailFrom   View
	status       string
	statusKind   StatusKind
	width        int
	height       int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func newList() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

func NewApp(cfg *config.Config, deps Deps) *App {
	ctx, cancel := context.WithCancel(context.Background())

	si := textinput.New()
	si.Placeholder = "Comic number or title..."
	si.Prompt = "› "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	theme := NewTheme(cfg.UI.Colors)
	sp.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	app := &App{
		config:       cfg,
		ctx:          ctx,
		cancel:       cancel,
		ctrl:         deps.Controller,
		store:        deps.Store,
		images:       deps.Images,
		opener:       deps.Opener,
		baseURL:      deps.BaseURL,
		keys:         newKeyMap(cfg.Keys.Bindings),
		theme:        theme,
		comicList:    newList(),
		favList:      newList(),
		searchInput:  si,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		help:         help.New(),
		view:         ViewBrowse,
		previousView: ViewBrowse,
		states:       make(chan browse.State, 256),
		favorites:    make(map[int]bool),
	}
	if app.baseURL == "" {
		app.baseURL = cfg.Source.BaseURL
	}

	app.keyHandler = NewKeyHandler(app)
	app.unsubscribe = app.ctrl.Subscribe(func(s browse.State) {
		select {
		case app.states <- s:
		case <-ctx.Done():
		}
	})

	return app
}

// Close stops listening for controller updates and cancels running work.
func (a *App) Close() {
	a.unsubscribe()
	a.cancel()
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		a.waitForState(),
		a.loadLatest(),
		a.loadFavorites(),
		a.spinner.Tick,
	)
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wrap := min(max((a.width*9)/10, 40), 100)
	if a.width > 0 && a.width < 50 {
		wrap = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || a.rendererWidth != wrap {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wrap
	}
	return a.glamourRenderer, nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case stateMsg:
		a.applyState(msg.state)
		return a, a.waitForState()

	case detailRenderedMsg:
		if a.view == ViewDetail && a.current != nil && a.current.Num == msg.num {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
		}
		return a, nil

	case favoritesLoadedMsg:
		a.setFavorites(msg.favorites)
		return a, nil

	case favoriteToggledMsg:
		a.favorites[msg.comic.Num] = msg.saved
		if msg.saved {
			a.setStatus(MsgFavoriteSaved(msg.comic.Title), StatusSuccess)
		} else {
			a.setStatus(MsgFavoriteRemoved, StatusInfo)
		}
		a.refreshItems()
		cmds := []tea.Cmd{a.loadFavorites()}
		if a.view == ViewDetail && a.current != nil && a.current.Num == msg.comic.Num {
			cmds = append(cmds, a.renderDetail(*a.current))
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.setStatus(msg.text, msg.kind)
		return a, nil

	case errorMsg:
		a.setStatus(msg.err.Error(), StatusError)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, a.updateActive(msg)
}

// updateActive forwards msg to the component of the current view.
func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.view {
	case ViewBrowse:
		a.comicList, cmd = a.comicList.Update(msg)
	case ViewSearch:
		a.searchInput, cmd = a.searchInput.Update(msg)
	case ViewDetail:
		a.viewport, cmd = a.viewport.Update(msg)
	case ViewFavorites:
		a.favList, cmd = a.favList.Update(msg)
	}
	return cmd
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	body := max(height-5, 3)
	a.comicList.SetSize(width, body)
	a.favList.SetSize(width, body)
	a.viewport.Width = width
	a.viewport.Height = body
	a.searchInput.Width = max(width-10, 10)
	a.help.Width = width
}

func (a *App) applyState(s browse.State) {
	prev := a.state
	a.state = s
	a.refreshItems()
	if prev.Mode != s.Mode || prev.CurrentPage != s.CurrentPage || prev.Query != s.Query {
		a.comicList.ResetSelected()
	}
}

func (a *App) refreshItems() {
	items := make([]list.Item, len(a.state.Items))
	for i, c := range a.state.Items {
		items[i] = comicItem{comic: c, favorite: a.favorites[c.Num]}
	}
	a.comicList.SetItems(items)
}

func (a *App) setFavorites(favs []*storage.Favorite) {
	a.favorites = make(map[int]bool, len(favs))
	items := make([]list.Item, len(favs))
	for i, f := range favs {
		a.favorites[f.Num()] = true
		items[i] = favoriteItem{favorite: f}
	}
	a.favList.SetItems(items)
	a.refreshItems()
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) selectedComic() (comic.Comic, bool) {
	switch a.view {
	case ViewDetail:
		if a.current != nil {
			return *a.current, true
		}
	case ViewFavorites:
		if i, ok := a.favList.SelectedItem().(favoriteItem); ok {
			return i.favorite.Comic, true
		}
	default:
		if i, ok := a.comicList.SelectedItem().(comicItem); ok {
			return i.comic, true
		}
	}
	return comic.Comic{}, false
}

func (a *App) header() string {
	s := a.state
	switch a.view {
	case ViewFavorites:
		return a.theme.renderHeader("› favorites", MsgResultsCount(len(a.favList.Items())), a.width)
	case ViewHelp:
		return a.theme.renderHeader("› help", "", a.width)
	case ViewDetail:
		if a.current != nil {
			return a.theme.renderHeader(fmt.Sprintf("› #%d", a.current.Num), a.current.Title, a.width)
		}
	}

	if s.Mode == browse.ModeSearchResults {
		return a.theme.renderHeader(fmt.Sprintf("› results for '%s'", s.Query), MsgResultsCount(len(s.Items)), a.width)
	}
	sub := s.RangeText
	if s.TotalPages > 0 {
		sub = fmt.Sprintf("%s • page %d of %d", s.RangeText, s.CurrentPage, s.TotalPages)
	}
	return a.theme.renderHeader("› "+AppName, sub, a.width)
}

func (a *App) body() string {
	height := max(a.height-5, 3)
	s := a.state

	switch a.view {
	case ViewDetail:
		return a.viewport.View()
	case ViewHelp:
		return a.help.FullHelpView(a.keys.FullHelp())
	case ViewFavorites:
		if len(a.favList.Items()) == 0 {
			return renderCentered(a.width, height, a.theme.Help.Render(MsgNoFavorites))
		}
		return a.favList.View()
	}

	if len(s.Items) == 0 {
		switch {
		case s.Loading:
			msg := MsgLoadingPage
			if s.Latest == 0 {
				msg = MsgLoadingLatest
			} else if s.Mode == browse.ModeSearchResults {
				msg = MsgSearching
			}
			return renderCentered(a.width, height, a.spinner.View()+" "+msg)
		case s.Err != nil && s.Err.Kind == browse.InitializationFailure:
			return renderCentered(a.width, height, a.theme.CompactBanner(
				fmt.Sprintf("%s Press %s to retry.", s.ErrorMessage(), a.keys.Retry.Help().Key)))
		}
	}

	content := a.comicList.View()
	if a.view == ViewSearch {
		content = lipgloss.JoinVertical(lipgloss.Top,
			a.theme.renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.width),
			content)
	}
	return content
}

func (a *App) footer() string {
	var line string
	s := a.state
	switch {
	case a.status != "":
		line = a.theme.status(a.statusKind).Render(a.status)
	case s.Err != nil && a.view != ViewFavorites && a.view != ViewHelp:
		line = a.theme.StatusErr.Render("✗ " + s.ErrorMessage())
	case s.Progress != "":
		line = a.spinner.View() + " " + a.theme.StatusInfo.Render(s.Progress)
	case s.Loading && len(s.Items) > 0:
		line = a.spinner.View() + " " + a.theme.StatusInfo.Render(MsgLoadingPage)
	default:
		line = a.help.ShortHelpView(a.keyHandler.HelpForCurrentView())
	}

	separator := a.theme.Separator.Render(strings.Repeat("─", max(a.width, 1)))
	return lipgloss.JoinVertical(lipgloss.Top, separator, a.theme.StatusBar.Width(max(a.width, 1)).Render(line))
}

func (a *App) View() string {
	return lipgloss.JoinVertical(lipgloss.Top, a.header(), a.body(), a.footer())
}

type comicItem struct {
	comic    comic.Comic
	favorite bool
}

func (i comicItem) Title() string {
	title := fmt.Sprintf("#%d %s", i.comic.Num, i.comic.Title)
	if i.favorite {
		title = "★ " + title
	}
	return title
}

func (i comicItem) Description() string {
	desc := truncateEnd(i.comic.Alt, 80)
	if d, ok := i.comic.Date(); ok {
		if desc != "" {
			desc += " • "
		}
		desc += d.Format("Jan 2, 2006")
	}
	return desc
}

func (i comicItem) FilterValue() string { return i.comic.Title }

type favoriteItem struct {
	favorite *storage.Favorite
}

func (i favoriteItem) Title() string {
	return fmt.Sprintf("★ #%d %s", i.favorite.Num(), i.favorite.Comic.Title)
}

func (i favoriteItem) Description() string {
	desc := "saved " + i.favorite.SavedAt.Local().Format("Jan 2, 15:04")
	if i.favorite.HasImage {
		desc += " • image stored"
	}
	return desc
}

func (i favoriteItem) FilterValue() string { return i.favorite.Comic.Title }

type stateMsg struct {
	state browse.State
}

type detailRenderedMsg struct {
	num     int
	content string
}

type favoritesLoadedMsg struct {
	favorites []*storage.Favorite
}

type favoriteToggledMsg struct {
	comic comic.Comic
	saved bool
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
