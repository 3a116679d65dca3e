package media

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pders01/panels/internal/config"
	"github.com/pders01/panels/internal/debuglog"
)

// Launcher opens comic images and pages in external applications.
type Launcher struct {
	registry      *Registry
	imageViewers  []string
	defaultOpener string
	tempDir       string

	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewRegistry()
	if err != nil {
		debuglog.Warnf("loading viewer definitions: %v", err)
		registry, _ = parseRegistry(nil, runtime.GOOS)
	}
	return newLauncher(cfg.Media, registry)
}

func newLauncher(mc config.MediaConfig, registry *Registry) *Launcher {
	var viewers []string
	switch registry.goos {
	case "darwin":
		viewers = mc.Darwin
	case "windows":
		viewers = mc.Windows
	default:
		viewers = mc.Linux
	}

	opener := mc.DefaultOpener
	if opener == "" {
		opener = registry.DefaultOpener()
	}

	return &Launcher{
		registry:      registry,
		imageViewers:  viewers,
		defaultOpener: opener,
		tempDir:       os.TempDir(),
		lookPath:      exec.LookPath,
		start:         startDetached,
	}
}

// Viewer returns the application that would open target.
func (l *Launcher) Viewer(target string) (string, Kind) {
	kind := l.registry.DetectKind(target)
	if kind == KindImage {
		for _, v := range l.imageViewers {
			if !l.registry.Supports(v, kind) {
				continue
			}
			if _, err := l.lookPath(l.registry.Executable(v)); err == nil {
				return v, kind
			}
		}
	}
	return l.defaultOpener, kind
}

// Open opens a URL or local file.
func (l *Launcher) Open(target string) error {
	if target == "" {
		return fmt.Errorf("nothing to open")
	}
	viewer, kind := l.Viewer(target)
	if viewer == "" {
		return fmt.Errorf("no application found to open %s", target)
	}

	cmd, err := l.registry.Command(viewer, kind, target)
	if err != nil {
		cmd = exec.Command(l.registry.Executable(viewer), target)
	}

	debuglog.Debugf("opening %s %s with %s", kind, target, viewer)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", viewer, err)
	}
	return nil
}

// OpenImage writes image bytes to a temporary file named after the source
// URL and opens it, for favorites whose image is stored locally.
func (l *Launcher) OpenImage(num int, sourceURL string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image #%d is empty", num)
	}
	ext := strings.ToLower(path.Ext(strings.SplitN(sourceURL, "?", 2)[0]))
	if ext == "" {
		ext = ".png"
	}

	dir := filepath.Join(l.tempDir, "panels")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating image dir: %w", err)
	}
	file := filepath.Join(dir, fmt.Sprintf("%d%s", num, ext))
	if err := os.WriteFile(file, data, 0o600); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return file, l.Open(file)
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
