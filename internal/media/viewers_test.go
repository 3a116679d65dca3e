package media

import (
	"os"
	"path/filepath"
	"testing"
)

func testRegistry(t *testing.T, goos string) *Registry {
	t.Helper()
	r, err := parseRegistry(viewersTOML, goos)
	if err != nil {
		t.Fatalf("parseRegistry() error = %v", err)
	}
	return r
}

func TestDetectKind(t *testing.T) {
	r := testRegistry(t, "linux")

	tests := []struct {
		name   string
		target string
		want   Kind
	}{
		{name: "PNG image", target: "https://imgs.xkcd.com/comics/python.png", want: KindImage},
		{name: "JPEG image", target: "https://imgs.xkcd.com/comics/photo.jpg", want: KindImage},
		{name: "GIF with query", target: "https://imgs.xkcd.com/comics/anim.gif?v=2", want: KindImage},
		{name: "uppercase extension", target: "https://imgs.xkcd.com/comics/BIG.PNG", want: KindImage},
		{name: "local file", target: "/tmp/panels/353.png", want: KindImage},
		{name: "comic page", target: "https://xkcd.com/353/", want: KindPage},
		{name: "explanation", target: "https://www.explainxkcd.com/wiki/index.php/353", want: KindPage},
		{name: "html page", target: "https://example.com/index.html", want: KindPage},
		{name: "empty", target: "", want: KindPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.DetectKind(tt.target); got != tt.want {
				t.Errorf("DetectKind(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestRegistry_DefaultOpener(t *testing.T) {
	tests := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
		"plan9":   "xdg-open",
	}
	for goos, want := range tests {
		t.Run(goos, func(t *testing.T) {
			if got := testRegistry(t, goos).DefaultOpener(); got != want {
				t.Errorf("DefaultOpener() on %s = %s, want %s", goos, got, want)
			}
		})
	}
}

func TestRegistry_Supports(t *testing.T) {
	r := testRegistry(t, "linux")

	tests := []struct {
		viewer string
		kind   Kind
		want   bool
	}{
		{"feh", KindImage, true},
		{"feh", KindPage, false},
		{"xdg-open", KindPage, true},
		{"xdg-open", KindImage, true},
		{"preview", KindImage, false},
		{"my-custom-viewer", KindPage, true},
	}
	for _, tt := range tests {
		if got := r.Supports(tt.viewer, tt.kind); got != tt.want {
			t.Errorf("Supports(%s, %v) = %v, want %v", tt.viewer, tt.kind, got, tt.want)
		}
	}
}

func TestRegistry_Command(t *testing.T) {
	tests := []struct {
		name   string
		goos   string
		viewer string
		kind   Kind
		target string
		want   []string
	}{
		{
			name:   "viewer with args",
			goos:   "linux",
			viewer: "feh",
			kind:   KindImage,
			target: "/tmp/1.png",
			want:   []string{"feh", "--scale-down", "--auto-zoom", "/tmp/1.png"},
		},
		{
			name:   "custom command",
			goos:   "darwin",
			viewer: "preview",
			kind:   KindImage,
			target: "/tmp/1.png",
			want:   []string{"open", "-a", "Preview", "/tmp/1.png"},
		},
		{
			name:   "windows start",
			goos:   "windows",
			viewer: "start",
			kind:   KindPage,
			target: "https://xkcd.com/1/",
			want:   []string{"cmd", "/c", "start", "", "https://xkcd.com/1/"},
		},
		{
			name:   "unknown viewer",
			goos:   "linux",
			viewer: "myviewer",
			kind:   KindImage,
			target: "a.png",
			want:   []string{"myviewer", "a.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := testRegistry(t, tt.goos).Command(tt.viewer, tt.kind, tt.target)
			if err != nil {
				t.Fatalf("Command() error = %v", err)
			}
			if len(cmd.Args) != len(tt.want) {
				t.Fatalf("Command() args = %q, want %q", cmd.Args, tt.want)
			}
			for i := range tt.want {
				if cmd.Args[i] != tt.want[i] {
					t.Errorf("Command() args = %q, want %q", cmd.Args, tt.want)
					break
				}
			}
		})
	}
}

func TestRegistry_CommandUnsupported(t *testing.T) {
	r := testRegistry(t, "linux")
	if _, err := r.Command("feh", KindPage, "https://xkcd.com/1/"); err == nil {
		t.Error("expected error for image-only viewer opening a page")
	}
}

func TestRegistry_MergeFile(t *testing.T) {
	r := testRegistry(t, "linux")

	path := filepath.Join(t.TempDir(), "viewers.toml")
	override := `
[image]
extensions = ["png", "avif"]

[viewers.feh]
platforms = ["linux"]
args = ["-F"]
images_only = true
`
	if err := os.WriteFile(path, []byte(override), 0o600); err != nil {
		t.Fatal(err)
	}
	r.mergeFile(path)

	if r.DetectKind("a.avif") != KindImage {
		t.Error("expected merged extension to be an image")
	}
	if r.DetectKind("a.jpg") != KindPage {
		t.Error("expected replaced extension list")
	}
	cmd, err := r.Command("feh", KindImage, "a.png")
	if err != nil {
		t.Fatal(err)
	}
	if len(cmd.Args) != 3 || cmd.Args[1] != "-F" {
		t.Errorf("expected overridden args, got %q", cmd.Args)
	}

	r.mergeFile(filepath.Join(t.TempDir(), "missing.toml"))
	if r.DetectKind("a.avif") != KindImage {
		t.Error("missing file should leave registry unchanged")
	}
}

func TestParseRegistry_Invalid(t *testing.T) {
	if _, err := parseRegistry([]byte("viewers = ["), "linux"); err == nil {
		t.Error("expected parse error")
	}
}
