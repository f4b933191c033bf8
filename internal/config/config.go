package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alucardeht/outliner/internal/logger"
	"github.com/alucardeht/outliner/internal/watcher"
)

const (
	EnvHome         = "OUTLINER_HOME"
	EnvTemplatesDir = "OUTLINER_TEMPLATES_DIR"
	EnvHistoryDir   = "OUTLINER_HISTORY_DIR"
	EnvPresetsDir   = "OUTLINER_PRESETS_DIR"
	EnvLogLevel     = "OUTLINER_LOG_LEVEL"
	EnvLogFormat    = "OUTLINER_LOG_FORMAT"
	EnvDebounce     = "OUTLINER_WATCH_DEBOUNCE"
	EnvIgnore       = "OUTLINER_WATCH_IGNORE"
	EnvToolTimeout  = "OUTLINER_TOOL_TIMEOUT"
	EnvSocket       = "OUTLINER_SOCKET"
)

type Config struct {
	HomeDir string
	// TemplatesDir overrides the embedded templates when non-empty.
	TemplatesDir string
	HistoryDir   string
	// PresetsDir holds the saved generation presets.
	PresetsDir   string
	LogLevel     string
	LogFormat    string
	ToolTimeout  time.Duration
	// SocketPath is where outliner-mcp listens when started with -socket.
	SocketPath string
	Watcher    watcher.Config
}

// Load reads a .env file from the working directory when present, then the
// environment. Unset variables fall back to defaults under ~/.outliner.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an arbitrary lookup function.
func FromEnv(getenv func(string) string) *Config {
	home := firstNonEmpty(getenv(EnvHome), defaultHome())

	cfg := &Config{
		HomeDir:      home,
		TemplatesDir: strings.TrimSpace(getenv(EnvTemplatesDir)),
		HistoryDir:   firstNonEmpty(getenv(EnvHistoryDir), filepath.Join(home, "history")),
		PresetsDir:   firstNonEmpty(getenv(EnvPresetsDir), filepath.Join(home, "presets")),
		LogLevel:     firstNonEmpty(getenv(EnvLogLevel), "warn"),
		LogFormat:    firstNonEmpty(getenv(EnvLogFormat), "text"),
		ToolTimeout:  30 * time.Second,
		SocketPath:   firstNonEmpty(getenv(EnvSocket), filepath.Join(home, "outliner.sock")),
		Watcher:      watcher.DefaultConfig(),
	}

	if d, ok := parseDuration(getenv(EnvDebounce)); ok {
		cfg.Watcher.DebounceWindow = d
	}
	if d, ok := parseDuration(getenv(EnvToolTimeout)); ok {
		cfg.ToolTimeout = d
	}
	if extra := splitList(getenv(EnvIgnore)); len(extra) > 0 {
		cfg.Watcher.IgnorePatterns = append(cfg.Watcher.IgnorePatterns, extra...)
	}

	return cfg
}

func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.HomeDir, c.HistoryDir, c.PresetsDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Logger translates the logging settings for logger.Init.
func (c *Config) Logger() logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = logger.ParseLevel(c.LogLevel, slog.LevelWarn)
	lc.Format = c.LogFormat
	return lc
}

func defaultHome() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return ".outliner"
	}
	return filepath.Join(homeDir, ".outliner")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// parseDuration accepts Go durations ("500ms") and bare milliseconds.
func parseDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	if ms, err := strconv.Atoi(s); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond, true
	}
	return 0, false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
