package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/panels/internal/comic"
	"github.com/pders01/panels/internal/debuglog"
)

var (
	errNoStore  = errors.New("favorites are not available")
	errNoOpener = errors.New("no application configured to open links")
)

func wrapErr(action string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", action, err)
}

// waitForState delivers the next controller snapshot to Update.
func (a *App) waitForState() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-a.states:
			return stateMsg{state: s}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// Controller operations block until they finish or are superseded, so they
// run as commands. Their results arrive through waitForState.

func (a *App) loadLatest() tea.Cmd {
	return func() tea.Msg {
		a.ctrl.LoadLatestAndFirstPage(a.ctx)
		return nil
	}
}

func (a *App) nextPage() tea.Cmd {
	return func() tea.Msg {
		a.ctrl.LoadNextPage(a.ctx)
		return nil
	}
}

func (a *App) previousPage() tea.Cmd {
	return func() tea.Msg {
		a.ctrl.LoadPreviousPage(a.ctx)
		return nil
	}
}

func (a *App) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		a.ctrl.Search(a.ctx, query)
		return nil
	}
}

func (a *App) clearSearch() tea.Cmd {
	return func() tea.Msg {
		a.ctrl.ClearSearch(a.ctx)
		return nil
	}
}

func (a *App) queryChanged(text string) tea.Cmd {
	return func() tea.Msg {
		a.ctrl.QueryChanged(a.ctx, text)
		return nil
	}
}

func (a *App) detailMarkdown(c comic.Comic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Title)

	meta := fmt.Sprintf("**#%d**", c.Num)
	if d, ok := c.Date(); ok {
		meta += " • " + d.Format("January 2, 2006")
	}
	if a.favorites[c.Num] {
		meta += " • ★ favorite"
	}
	b.WriteString(meta + "\n\n")

	if c.Alt != "" {
		fmt.Fprintf(&b, "> %s\n\n", c.Alt)
	}
	if t := strings.TrimSpace(c.Transcript); t != "" {
		b.WriteString("## Transcript\n\n")
		for _, line := range strings.Split(t, "\n") {
			fmt.Fprintf(&b, "%s  \n", line)
		}
		b.WriteString("\n")
	}
	if c.News != "" {
		fmt.Fprintf(&b, "*%s*\n\n", c.News)
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "- Comic: %s\n", c.URL(a.baseURL))
	if c.Img != "" {
		fmt.Fprintf(&b, "- Image: %s\n", c.Img)
	}
	fmt.Fprintf(&b, "- Explanation: %s\n", c.ExplainURL())
	if c.Link != "" {
		fmt.Fprintf(&b, "- Link: %s\n", c.Link)
	}
	return b.String()
}

func (a *App) renderDetail(c comic.Comic) tea.Cmd {
	markdown := a.detailMarkdown(c)
	r, rerr := a.getRenderer()
	return func() tea.Msg {
		if rerr != nil {
			return detailRenderedMsg{num: c.Num, content: markdown}
		}
		rendered, err := r.Render(markdown)
		if err != nil {
			debuglog.Warnf("rendering comic #%d: %v", c.Num, err)
			return detailRenderedMsg{num: c.Num, content: markdown}
		}
		return detailRenderedMsg{num: c.Num, content: rendered}
	}
}

func (a *App) loadFavorites() tea.Cmd {
	return func() tea.Msg {
		if a.store == nil {
			return favoritesLoadedMsg{}
		}
		favs, err := a.store.GetFavorites()
		if err != nil {
			return errorMsg{err: wrapErr("loading favorites", err)}
		}
		return favoritesLoadedMsg{favorites: favs}
	}
}

// toggleFavorite saves c with its image bytes, or removes it when it is
// already a favorite. A failed image download still saves the comic.
func (a *App) toggleFavorite(c comic.Comic) tea.Cmd {
	wasFavorite := a.favorites[c.Num]
	return func() tea.Msg {
		if a.store == nil {
			return errorMsg{err: errNoStore}
		}

		var image []byte
		if !wasFavorite && a.images != nil && c.Img != "" {
			data, err := a.images.FetchImage(a.ctx, c.Img)
			if err != nil {
				debuglog.Warnf("fetching image of #%d: %v", c.Num, err)
			} else {
				image = data
			}
		}

		saved, err := a.store.ToggleFavorite(c, image)
		if err != nil {
			return errorMsg{err: err}
		}
		return favoriteToggledMsg{comic: c, saved: saved}
	}
}

// openImage prefers the stored bytes of a favorite over the remote image.
func (a *App) openImage(c comic.Comic) tea.Cmd {
	favorite := a.favorites[c.Num]
	return func() tea.Msg {
		if a.opener == nil {
			return errorMsg{err: errNoOpener}
		}
		if favorite && a.store != nil {
			if data, err := a.store.GetImage(c.Num); err == nil {
				if _, err := a.opener.OpenImage(c.Num, c.Img, data); err != nil {
					return errorMsg{err: wrapErr("opening image", err)}
				}
				return statusMsg{text: fmt.Sprintf("Opened stored image of #%d", c.Num), kind: StatusSuccess}
			}
		}
		if c.Img == "" {
			return errorMsg{err: fmt.Errorf("comic #%d has no image", c.Num)}
		}
		if err := a.opener.Open(c.Img); err != nil {
			return errorMsg{err: wrapErr("opening image", err)}
		}
		return statusMsg{text: fmt.Sprintf("Opened image of #%d", c.Num), kind: StatusSuccess}
	}
}

func (a *App) openExplanation(c comic.Comic) tea.Cmd {
	return func() tea.Msg {
		if a.opener == nil {
			return errorMsg{err: errNoOpener}
		}
		if err := a.opener.Open(c.ExplainURL()); err != nil {
			return errorMsg{err: wrapErr("opening explanation", err)}
		}
		return statusMsg{text: fmt.Sprintf("Opened explanation of #%d", c.Num), kind: StatusSuccess}
	}
}
