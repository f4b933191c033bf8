package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level     slog.Level
	Format    string
	Output    io.Writer
	AddSource bool
}

func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// Init installs the process-wide slog handler. CLI output goes to stdout,
// so logs always default to stderr.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels;
// anything else yields fallback.
func ParseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

// ForComponent returns a logger that resolves the default handler lazily,
// so package-level loggers created before Init still honour it.
func ForComponent(component string) *Component {
	return &Component{name: component}
}

type Component struct {
	name string
}

func (c *Component) logger() *slog.Logger {
	return slog.Default().With("component", c.name)
}

func (c *Component) Debug(msg string, args ...any) { c.logger().Debug(msg, args...) }
func (c *Component) Info(msg string, args ...any)  { c.logger().Info(msg, args...) }
func (c *Component) Warn(msg string, args ...any)  { c.logger().Warn(msg, args...) }
func (c *Component) Error(msg string, args ...any) { c.logger().Error(msg, args...) }
