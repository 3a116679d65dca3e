package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed viewers.toml
var viewersTOML []byte

// Kind is what a target points at.
type Kind int

const (
	KindPage Kind = iota
	KindImage
)

func (k Kind) String() string {
	if k == KindImage {
		return "image"
	}
	return "page"
}

// ViewerDefinition describes how to invoke a viewer. Command defaults to
// the viewer name.
type ViewerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	Command     string   `toml:"command,omitempty"`
	Args        []string `toml:"args,omitempty"`
	ImagesOnly  bool     `toml:"images_only,omitempty"`
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

type ImageConfig struct {
	Extensions []string `toml:"extensions"`
}

type viewersFile struct {
	Image     ImageConfig                 `toml:"image"`
	Platforms map[string]PlatformConfig   `toml:"platforms"`
	Viewers   map[string]ViewerDefinition `toml:"viewers"`
}

// Registry holds viewer definitions and image detection rules.
type Registry struct {
	goos       string
	extensions []string
	platforms  map[string]PlatformConfig
	viewers    map[string]ViewerDefinition
}

// NewRegistry parses the embedded definitions and merges the user's
// viewers.toml, if there is one.
func NewRegistry() (*Registry, error) {
	r, err := parseRegistry(viewersTOML, runtime.GOOS)
	if err != nil {
		return nil, err
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.mergeFile(filepath.Join(home, ".config", "panels", "viewers.toml"))
	}
	return r, nil
}

func parseRegistry(data []byte, goos string) (*Registry, error) {
	var file viewersFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing viewers.toml: %w", err)
	}
	r := &Registry{
		goos:       goos,
		extensions: file.Image.Extensions,
		platforms:  file.Platforms,
		viewers:    file.Viewers,
	}
	if r.platforms == nil {
		r.platforms = make(map[string]PlatformConfig)
	}
	if r.viewers == nil {
		r.viewers = make(map[string]ViewerDefinition)
	}
	return r, nil
}

func (r *Registry) mergeFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var file viewersFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return
	}
	for name, def := range file.Viewers {
		r.viewers[name] = def
	}
	for name, p := range file.Platforms {
		r.platforms[name] = p
	}
	if len(file.Image.Extensions) > 0 {
		r.extensions = file.Image.Extensions
	}
}

// DetectKind reports whether target looks like an image file or URL.
func (r *Registry) DetectKind(target string) Kind {
	lower := strings.ToLower(target)
	if i := strings.IndexAny(lower, "?#"); i != -1 {
		lower = lower[:i]
	}
	ext := strings.TrimPrefix(filepath.Ext(lower), ".")
	if ext != "" && slices.Contains(r.extensions, ext) {
		return KindImage
	}
	return KindPage
}

func (r *Registry) DefaultOpener() string {
	if p, ok := r.platforms[r.goos]; ok && p.DefaultOpener != "" {
		return p.DefaultOpener
	}
	if p, ok := r.platforms["fallback"]; ok && p.DefaultOpener != "" {
		return p.DefaultOpener
	}
	return "open"
}

// Supports reports whether viewer can open kind on this platform. Unknown
// viewers are assumed to open anything.
func (r *Registry) Supports(viewer string, kind Kind) bool {
	def, ok := r.viewers[viewer]
	if !ok {
		return true
	}
	if len(def.Platforms) > 0 && !slices.Contains(def.Platforms, r.goos) {
		return false
	}
	return kind == KindImage || !def.ImagesOnly
}

// Executable is the program that has to be on PATH for viewer.
func (r *Registry) Executable(viewer string) string {
	if def, ok := r.viewers[viewer]; ok && def.Command != "" {
		return def.Command
	}
	return viewer
}

// Command builds the invocation of viewer for target.
func (r *Registry) Command(viewer string, kind Kind, target string) (*exec.Cmd, error) {
	if !r.Supports(viewer, kind) {
		return nil, fmt.Errorf("%s cannot open %s on %s", viewer, kind, r.goos)
	}
	def := r.viewers[viewer]
	args := append(slices.Clone(def.Args), target)
	return exec.Command(r.Executable(viewer), args...), nil
}
