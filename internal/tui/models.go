package tui

type View int

const (
	ViewBrowse View = iota
	ViewSearch
	ViewDetail
	ViewFavorites
	ViewHelp
)

func (v View) String() string {
	switch v {
	case ViewBrowse:
		return "browse"
	case ViewSearch:
		return "search"
	case ViewDetail:
		return "detail"
	case ViewFavorites:
		return "favorites"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}
