package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgLoadingLatest   = "Loading latest comic…"
	MsgLoadingPage     = "Loading comics…"
	MsgSearching       = "Searching…"
	MsgSavingFavorite  = "Saving favorite…"
	MsgOpening         = "Opening…"
	MsgNoFavorites     = "No favorites yet"
	MsgFavoriteRemoved = "Removed from favorites"
	MsgNothingSelected = "No comic selected"
)

func MsgFavoriteSaved(title string) string {
	return fmt.Sprintf("Saved '%s' to favorites", strings.TrimSpace(title))
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}
