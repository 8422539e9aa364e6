// Package log provides the structured logging output used by the machine
// and its command-line tools: a formatted, grouped record layout on top
// of log/slog.
package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultLogger returns a new formatted logger writing to os.Stderr.
	// Components call DefaultLogger during startup and cache the result.
	DefaultLogger = func() *Logger { return NewFormattedLogger(os.Stderr) }

	// SetDefault sets log/slog's package-level default logger. It does not
	// change what DefaultLogger returns.
	SetDefault = slog.SetDefault

	// LogLevel holds the current log level and can be changed at runtime.
	LogLevel = &slog.LevelVar{}
)

// NewFormattedLogger returns a logger that uses a Handler to format and
// write log records to out.
func NewFormattedLogger(out io.Writer) *Logger {
	return slog.New(NewHandler(out))
}

// handlerOpts configures every Handler; AddSource and ReplaceAttr are
// fixed, only the level varies at runtime via LogLevel.
var handlerOpts = &slog.HandlerOptions{
	AddSource: true,
	Level:     LogLevel,
}

// Handler implements slog.Handler to produce formatted, grouped log
// records: one "KEY : value" line per attribute, nested groups indented
// under their key, written under a mutex so concurrent goroutines (the
// fetch/execute loop and the CLI) don't interleave lines.
type Handler struct {
	mut *sync.Mutex
	out io.Writer

	group string
	attrs []slog.Attr
}

// NewHandler creates a Handler that writes formatted records to out.
func NewHandler(out io.Writer) *Handler {
	return &Handler{
		out: out,
		mut: new(sync.Mutex),
	}
}

// Enabled returns true if level is at or above the handler's configured
// level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handlerOpts.Level.Level()
}

// Handle formats and writes a log record.
func (h *Handler) Handle(_ context.Context, rec slog.Record) error {
	out := bytes.NewBuffer(make([]byte, 0, 4096))

	if !rec.Time.IsZero() {
		fmt.Fprintf(out, "%10s : %s\n", "TIMESTAMP", rec.Time.Format(time.RFC3339Nano))
	}

	fmt.Fprintf(out, "%10s : %s\n", "LEVEL", rec.Level.String())

	if handlerOpts.AddSource && rec.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{rec.PC})
		f, _ := frames.Next()
		_, file := path.Split(f.File)
		fmt.Fprintf(out, "%10s : %s:%d\n", "SOURCE", file, f.Line)

		if f.Func != nil {
			splits := strings.Split(f.Function, "/")
			fmt.Fprintf(out, "%10s : %s\n", "FUNCTION", splits[len(splits)-1])
		}
	}

	fmt.Fprintf(out, "%10s : %s\n", "MESSAGE", rec.Message)

	for _, a := range h.attrs {
		if err := h.appendAttr(out, a, false); err != nil {
			return err
		}
	}

	var attrErr error

	rec.Attrs(func(attr slog.Attr) bool {
		if err := h.appendAttr(out, attr, false); err != nil {
			attrErr = err
			return false
		}

		return true
	})

	if attrErr != nil {
		return attrErr
	}

	fmt.Fprintln(out)

	h.mut.Lock()
	defer h.mut.Unlock()

	_, err := h.out.Write(out.Bytes())

	return err
}

// WithGroup returns a handler that records name as its group. Handle does
// not use the group: attributes are not nested under name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	attrs := make([]slog.Attr, len(h.attrs))
	copy(attrs, h.attrs)

	return &Handler{
		mut:   h.mut,
		out:   h.out,
		attrs: attrs,
		group: name,
	}
}

// WithAttrs returns a handler that always includes the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	as := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(as, h.attrs)
	as = append(as, attrs...)

	return &Handler{
		out:   h.out,
		mut:   h.mut,
		attrs: as,
	}
}

func (h *Handler) appendAttr(out io.Writer, attr slog.Attr, grouped bool) error {
	attr.Value = attr.Value.Resolve()

	key, value := strings.ToUpper(attr.Key), attr.Value

	switch {
	case attr.Equal(slog.Attr{}):
		return nil

	case value.Kind() != slog.KindGroup:
		if grouped {
			fmt.Fprint(out, "  ")
		}

		_, err := fmt.Fprintf(out, "%10s : %v\n", key, value.Any())

		return err

	case key != "":
		if _, err := fmt.Fprintf(out, "%10s :\n", key); err != nil {
			return err
		}

		h.group = key

		for _, a := range value.Group() {
			if err := h.appendAttr(out, a, true); err != nil {
				return err
			}
		}

	default: // group with no key: splice in at the current level.
		for _, a := range value.Group() {
			if err := h.appendAttr(out, a, grouped); err != nil {
				return err
			}
		}
	}

	return nil
}

// Type aliases from the standard library, so callers need not import
// log/slog directly.
type (
	Logger = slog.Logger
	Value  = slog.Value
)

var (
	String     = slog.String
	GroupValue = slog.GroupValue
	Any        = slog.Any
)
