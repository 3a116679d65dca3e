package comic

import (
	"fmt"
	"strconv"
	"time"
)

const explainBaseURL = "https://www.explainxkcd.com/wiki/index.php"

// Comic is a single numbered item as published by the upstream service.
// Only Num and Title are interpreted by the browsing engine; the remaining
// fields are carried through for display.
type Comic struct {
	Num        int    `json:"num"`
	Title      string `json:"title"`
	SafeTitle  string `json:"safe_title"`
	Img        string `json:"img"`
	Alt        string `json:"alt"`
	Transcript string `json:"transcript"`
	Link       string `json:"link"`
	News       string `json:"news"`
	Day        string `json:"day"`
	Month      string `json:"month"`
	Year       string `json:"year"`
}

// Date parses the year/month/day parts. The upstream does not zero-pad them.
func (c Comic) Date() (time.Time, bool) {
	y, err := strconv.Atoi(c.Year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(c.Month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(c.Day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

// URL returns the public page of the comic on the given site.
func (c Comic) URL(base string) string {
	return fmt.Sprintf("%s/%d/", trimSlash(base), c.Num)
}

func (c Comic) ExplainURL() string {
	return fmt.Sprintf("%s/%d", explainBaseURL, c.Num)
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
