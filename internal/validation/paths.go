package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxPathLength = 4096

// PathHandler resolves the files panels writes: the favorites database,
// the config file and the debug log.
type PathHandler struct {
	home string
}

func NewPathHandler() (*PathHandler, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	return &PathHandler{home: home}, nil
}

// DBPath validates the database path, defaulting to ~/.panels.db, and
// creates its parent directory.
func (ph *PathHandler) DBPath(userPath string) (string, error) {
	if userPath == ":memory:" {
		return "", fmt.Errorf("database path must be a file")
	}
	return ph.file(userPath, filepath.Join(ph.home, ".panels.db"))
}

func (ph *PathHandler) ConfigPath(userPath string) (string, error) {
	return ph.file(userPath, filepath.Join(ph.home, ".config", "panels", "config.toml"))
}

func (ph *PathHandler) LogPath(userPath string) (string, error) {
	return ph.file(userPath, filepath.Join(ph.home, ".panels", "panels.log"))
}

func (ph *PathHandler) file(userPath, fallback string) (string, error) {
	if strings.TrimSpace(userPath) == "" {
		userPath = fallback
	}
	path, err := ph.clean(userPath)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", path, err)
	}
	return path, nil
}

func (ph *PathHandler) clean(path string) (string, error) {
	if len(path) > maxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if r == 0 {
			return "", fmt.Errorf("path contains null bytes")
		}
		if r < 32 && r != '\t' {
			return "", fmt.Errorf("path contains control characters")
		}
	}

	if path == "~" {
		path = ph.home
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(ph.home, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}
