package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiCyan   = "\x1b[36m"
)

// consoleHandler renders compact single-line records for interactive use:
// time, level, component, message, then key=value attrs.
type consoleHandler struct {
	mu     sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	color  bool
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &consoleHandler{writer: w, level: lvl, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var component string
	var pairs []string
	collect := func(attr slog.Attr) {
		key := attr.Key
		if len(h.groups) > 0 {
			key = strings.Join(h.groups, ".") + "." + key
		}
		if key == FieldComponent && component == "" {
			component = attr.Value.String()
			return
		}
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, attr.Value))
	}
	for _, attr := range h.attrs {
		collect(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		collect(attr)
		return true
	})

	var buf bytes.Buffer
	buf.Grow(128 + len(pairs)*24)

	buf.WriteString(h.paint(ansiDim, timestamp.Format("15:04:05.000")))
	buf.WriteByte(' ')
	buf.WriteString(h.levelLabel(record.Level))
	if component != "" {
		buf.WriteByte(' ')
		buf.WriteString(h.paint(ansiCyan, "["+component+"]"))
	}
	buf.WriteByte(' ')
	buf.WriteString(record.Message)
	for _, pair := range pairs {
		buf.WriteByte(' ')
		buf.WriteString(h.paint(ansiDim, pair))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return h.paint(ansiRed, "ERROR")
	case level >= slog.LevelWarn:
		return h.paint(ansiYellow, "WARN ")
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return h.paint(ansiDim, "DEBUG")
	}
}

func (h *consoleHandler) paint(code, text string) string {
	if !h.color {
		return text
	}
	return code + text + ansiReset
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &consoleHandler{
		writer: h.writer,
		level:  h.level,
		color:  h.color,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
		groups: h.groups,
	}
	return next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	next := &consoleHandler{
		writer: h.writer,
		level:  h.level,
		color:  h.color,
		attrs:  h.attrs,
		groups: append(append([]string{}, h.groups...), name),
	}
	return next
}
