package storage

import (
	"time"

	"github.com/pders01/panels/internal/comic"
)

// Favorite is a comic the user kept, together with when it was saved and
// whether its image bytes are stored alongside it.
type Favorite struct {
	Comic    comic.Comic `json:"comic"`
	SavedAt  time.Time   `json:"saved_at"`
	HasImage bool        `json:"has_image"`
}

func (f *Favorite) Num() int {
	return f.Comic.Num
}
