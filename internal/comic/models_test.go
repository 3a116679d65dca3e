package comic

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComic_Date(t *testing.T) {
	tests := []struct {
		name   string
		comic  Comic
		want   time.Time
		wantOK bool
	}{
		{name: "unpadded", comic: Comic{Year: "2007", Month: "12", Day: "5"}, want: time.Date(2007, 12, 5, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "padded", comic: Comic{Year: "2006", Month: "01", Day: "01"}, want: time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "empty", comic: Comic{}, wantOK: false},
		{name: "bad month", comic: Comic{Year: "2007", Month: "13", Day: "1"}, wantOK: false},
		{name: "bad day", comic: Comic{Year: "2007", Month: "1", Day: "x"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.comic.Date()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestComic_URLs(t *testing.T) {
	c := Comic{Num: 353}
	assert.Equal(t, "https://xkcd.com/353/", c.URL("https://xkcd.com"))
	assert.Equal(t, "https://xkcd.com/353/", c.URL("https://xkcd.com//"))
	assert.Equal(t, "https://www.explainxkcd.com/wiki/index.php/353", c.ExplainURL())
}

func TestFetchError(t *testing.T) {
	cause := errors.New("connection refused")
	err := newFetchError(KindTransport, 42, cause)

	assert.Equal(t, "fetching comic #42: transport failure: connection refused", err.Error())
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDecode)

	latest := newFetchError(KindDecode, 0, nil)
	assert.Equal(t, "fetching comic latest: decode failure", latest.Error())

	assert.Equal(t, "invalid target", KindInvalidTarget.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
