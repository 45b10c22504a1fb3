package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lmittmann/tint"
)

func Configure(levelStr string, env string, format string) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, levelStr, env, format)))
}

// NewHandler builds the handler Configure installs. The text format is the
// key="value" line external tooling parses, so it always carries the source.
func NewHandler(w io.Writer, levelStr string, env string, format string) slog.Handler {
	level := parseLogLevel(levelStr)

	if env == "dev" || env == "development" {
		return tint.NewHandler(w, &tint.Options{Level: level, AddSource: true})
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: shortSource,
	}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// shortSource renders the source attribute as file:line.
func shortSource(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey || len(groups) > 0 {
		return a
	}
	src, ok := a.Value.Any().(*slog.Source)
	if !ok || src == nil {
		return a
	}
	file := filepath.Join(filepath.Base(filepath.Dir(src.File)), filepath.Base(src.File))
	return slog.String(slog.SourceKey, file+":"+strconv.Itoa(src.Line))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
