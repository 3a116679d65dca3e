package debuglog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Level is the severity of a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a configured level name. Unknown names mean INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF", "NONE":
		return LevelOff
	default:
		return LevelInfo
	}
}

// All state is guarded by mu; search batches log from many goroutines.
var (
	mu      sync.Mutex
	current = LevelOff
	logger  *log.Logger
	closer  io.Closer
)

// Setup opens the log file and sets the level. An empty path means
// ~/.panels/panels.log. LevelOff closes any open file and logs nothing.
func Setup(level Level, path string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	current = level

	if level == LevelOff {
		return nil
	}

	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".panels", "panels.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	closer = f
	logger = log.New(f, "panels ", log.LstdFlags|log.Lmicroseconds)
	return nil
}

// SetOutput routes log lines to w, mostly useful in tests.
func SetOutput(level Level, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	current = level
	if w != nil && level != LevelOff {
		logger = log.New(w, "panels ", 0)
	}
}

func SetLevel(level Level) {
	mu.Lock()
	current = level
	mu.Unlock()
}

func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Enabled reports whether lines at level would be written.
func Enabled(level Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return logger != nil && level >= current && current != LevelOff
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	logger = nil
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

func write(level Level, suffix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil || level < current || current == LevelOff {
		return
	}
	logger.Printf("[%s] %s%s", level, fmt.Sprintf(format, args...), suffix)
}

func Debugf(format string, args ...any) { write(LevelDebug, "", format, args...) }
func Infof(format string, args ...any)  { write(LevelInfo, "", format, args...) }
func Warnf(format string, args ...any)  { write(LevelWarn, "", format, args...) }
func Errorf(format string, args ...any) { write(LevelError, "", format, args...) }

// Fields is a set of key=value pairs appended to every line of a FieldLogger.
type Fields map[string]any

type FieldLogger struct {
	fields Fields
}

func WithFields(fields Fields) *FieldLogger {
	cp := make(Fields, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return &FieldLogger{fields: cp}
}

// With returns a copy of fl with one more field.
func (fl *FieldLogger) With(key string, value any) *FieldLogger {
	next := WithFields(fl.fields)
	next.fields[key] = value
	return next
}

// suffix renders fields sorted by key so lines are stable.
func (fl *FieldLogger) suffix() string {
	if len(fl.fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fl.fields))
	for k := range fl.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fl.fields[k]))
	}
	return " [" + strings.Join(parts, " ") + "]"
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	write(LevelDebug, fl.suffix(), format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	write(LevelInfo, fl.suffix(), format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	write(LevelWarn, fl.suffix(), format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	write(LevelError, fl.suffix(), format, args...)
}
