// Package logging provides the slog setup shared by the server and tools.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// JSONHandler writes one JSON object per record. In pretty mode objects are
// indented, which is easier to read when following a single game by eye.
// Compact mode emits one object per line for piping into jq.
type JSONHandler struct {
	w         io.Writer
	mu        *sync.Mutex
	level     slog.Leveler
	addSource bool
	pretty    bool

	attrs  []slog.Attr
	groups []string
}

// NewPrettyJSONHandler returns an indenting JSONHandler.
func NewPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *JSONHandler {
	h := newHandler(w, opts)
	h.pretty = true
	return h
}

// NewCompactJSONHandler returns a single-line JSONHandler.
func NewCompactJSONHandler(w io.Writer, opts *slog.HandlerOptions) *JSONHandler {
	return newHandler(w, opts)
}

func newHandler(w io.Writer, opts *slog.HandlerOptions) *JSONHandler {
	h := &JSONHandler{w: w, mu: &sync.Mutex{}, level: slog.LevelInfo}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.addSource = opts.AddSource
	}
	return h
}

// New builds a logger at level, pretty or compact.
func New(w io.Writer, level slog.Level, pretty bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if pretty {
		return slog.New(NewPrettyJSONHandler(w, opts))
	}
	return slog.New(NewCompactJSONHandler(w, opts))
}

// ParseLevel accepts debug, info, warn/warning and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func (h *JSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *JSONHandler) Handle(_ context.Context, r slog.Record) error {
	when := r.Time
	if when.IsZero() {
		when = time.Now()
	}
	payload := map[string]any{
		"time":  when.Format(time.RFC3339Nano),
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	if h.addSource {
		payload["source"] = sourceFromPC(r.PC)
	}

	// Handler attrs sit outside any group opened after them; record attrs
	// land in the innermost group.
	for _, a := range h.attrs {
		putAttr(payload, nil, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		putAttr(payload, h.groups, a)
		return true
	})

	var (
		b   []byte
		err error
	)
	if h.pretty {
		b, err = json.MarshalIndent(payload, "", "  ")
	} else {
		b, err = json.Marshal(payload)
	}
	if err != nil {
		b = []byte(`{"time":` + strconv.Quote(payload["time"].(string)) +
			`,"level":` + strconv.Quote(r.Level.String()) +
			`,"msg":` + strconv.Quote(r.Message) +
			`,"log_error":` + strconv.Quote(err.Error()) + `}`)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(append(b, '\n'))
	return err
}

func (h *JSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	if len(h.groups) > 0 {
		// Nest under the open groups so they render where they were added.
		g := slog.Attr{Key: h.groups[len(h.groups)-1], Value: slog.GroupValue(attrs...)}
		for i := len(h.groups) - 2; i >= 0; i-- {
			g = slog.Attr{Key: h.groups[i], Value: slog.GroupValue(g)}
		}
		attrs = []slog.Attr{g}
	}
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *JSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func putAttr(root map[string]any, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	dst := root
	for _, g := range groups {
		m, ok := dst[g].(map[string]any)
		if !ok {
			m = map[string]any{}
			dst[g] = m
		}
		dst = m
	}
	putValue(dst, a)
}

func putValue(dst map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		dst[a.Key] = valueToAny(v)
		return
	}
	attrs := v.Group()
	if len(attrs) == 0 {
		return
	}
	// An empty key inlines the group.
	child := dst
	if a.Key != "" {
		m, ok := dst[a.Key].(map[string]any)
		if !ok {
			m = map[string]any{}
			dst[a.Key] = m
		}
		child = m
	}
	for _, ga := range attrs {
		ga.Value = ga.Value.Resolve()
		if ga.Key != "" || ga.Value.Kind() == slog.KindGroup {
			putValue(child, ga)
		}
	}
}

func valueToAny(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		if s, ok := v.Any().(fmt.Stringer); ok {
			return s.String()
		}
		return v.Any()
	default:
		return v.String()
	}
}

func sourceFromPC(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if f.File == "" {
		return ""
	}
	file := f.File
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		file = file[idx+1:]
	}
	return file + ":" + strconv.Itoa(f.Line)
}
