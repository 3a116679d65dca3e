package media

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/pders01/panels/internal/config"
)

type recorder struct {
	cmds []*exec.Cmd
	err  error
}

func (r *recorder) start(cmd *exec.Cmd) error {
	r.cmds = append(r.cmds, cmd)
	return r.err
}

func testLauncher(t *testing.T, installed ...string) (*Launcher, *recorder) {
	t.Helper()
	mc := config.MediaConfig{
		Linux:         []string{"imv", "feh", "xdg-open"},
		DefaultOpener: "xdg-open",
	}
	l := newLauncher(mc, testRegistry(t, "linux"))

	rec := &recorder{}
	l.start = rec.start
	l.tempDir = t.TempDir()
	l.lookPath = func(name string) (string, error) {
		for _, in := range installed {
			if in == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
	return l, rec
}

func TestLauncher_Viewer(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		target    string
		want      string
		wantKind  Kind
	}{
		{name: "first installed viewer", installed: []string{"imv", "feh"}, target: "a.png", want: "imv", wantKind: KindImage},
		{name: "skips missing viewer", installed: []string{"feh"}, target: "a.png", want: "feh", wantKind: KindImage},
		{name: "falls back to opener", installed: nil, target: "a.png", want: "xdg-open", wantKind: KindImage},
		{name: "pages use opener", installed: []string{"imv"}, target: "https://xkcd.com/1/", want: "xdg-open", wantKind: KindPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := testLauncher(t, tt.installed...)
			got, kind := l.Viewer(tt.target)
			if got != tt.want || kind != tt.wantKind {
				t.Errorf("Viewer(%q) = %s, %v, want %s, %v", tt.target, got, kind, tt.want, tt.wantKind)
			}
		})
	}
}

func TestLauncher_Open(t *testing.T) {
	l, rec := testLauncher(t, "feh")

	if err := l.Open("https://imgs.xkcd.com/comics/python.png"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := l.Open("https://www.explainxkcd.com/wiki/index.php/353"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if len(rec.cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(rec.cmds))
	}
	if rec.cmds[0].Args[0] != "feh" {
		t.Errorf("image opened with %q, want feh", rec.cmds[0].Args)
	}
	last := rec.cmds[1].Args
	if last[0] != "xdg-open" || last[len(last)-1] != "https://www.explainxkcd.com/wiki/index.php/353" {
		t.Errorf("page opened with %q", last)
	}
}

func TestLauncher_OpenErrors(t *testing.T) {
	l, rec := testLauncher(t)

	if err := l.Open(""); err == nil {
		t.Error("expected error for empty target")
	}

	rec.err = errors.New("exec failed")
	if err := l.Open("https://xkcd.com/1/"); err == nil {
		t.Error("expected start error to be returned")
	}
}

func TestLauncher_OpenImage(t *testing.T) {
	l, rec := testLauncher(t, "imv")

	file, err := l.OpenImage(353, "https://imgs.xkcd.com/comics/python.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("OpenImage() error = %v", err)
	}

	if filepath.Base(file) != "353.png" {
		t.Errorf("expected file named 353.png, got %s", file)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("unexpected file contents %q", data)
	}
	if len(rec.cmds) != 1 || rec.cmds[0].Args[1] != file {
		t.Errorf("expected imv to open %s, got %v", file, rec.cmds)
	}

	if _, err := l.OpenImage(1, "x.png", nil); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestNewLauncher(t *testing.T) {
	cfg := config.TestConfig()
	l := NewLauncher(cfg)
	if l == nil {
		t.Fatal("NewLauncher() returned nil")
	}
	if l.defaultOpener == "" {
		t.Error("NewLauncher() did not set a default opener")
	}
}
