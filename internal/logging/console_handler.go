package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one header line per record followed by indented
// fields. Info and above show a curated field set and elide values that have
// not changed since the previous line for the same render. Debug records list
// every attribute.
type consoleHandler struct {
	shared    *consoleState
	level     *slog.LevelVar
	addSource bool
	attrs     []slog.Attr
	groups    []string
}

// consoleState is shared by every handler derived through WithAttrs or
// WithGroup.
type consoleState struct {
	mu   sync.Mutex
	out  io.Writer
	seen map[string]map[string]string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{
		shared:    &consoleState{out: w, seen: make(map[string]map[string]string)},
		level:     lvl,
		addSource: addSource,
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}
	fields := collectFields(h.groups, h.attrs, record)
	subject := subjectOf(fields)

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s", formatTimestamp(ts), levelLabel(record.Level))
	if subject.component != "" {
		fmt.Fprintf(&buf, " [%s]", subject.component)
	}
	if s := composeSubject(subject.renderID, subject.stage); s != "" {
		buf.WriteString(" " + s)
	}
	buf.WriteString(" – " + msg)
	if src := record.Source(); h.addSource && src != nil && src.File != "" {
		fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
	}
	buf.WriteByte('\n')

	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	if record.Level < slog.LevelInfo {
		for _, f := range fields {
			fmt.Fprintf(&buf, "    %s: %s\n", f.key, formatValue(f.value))
		}
	} else {
		shown, hidden := selectInfoFields(fields)
		for _, f := range h.shared.changedSince(subject.renderID, shown, record.Level) {
			fmt.Fprintf(&buf, "    - %s: %s\n", f.label, f.value)
		}
		switch {
		case hidden == 1:
			buf.WriteString("    + 1 more field hidden\n")
		case hidden > 1:
			fmt.Fprintf(&buf, "    + %d more fields hidden\n", hidden)
		}
	}
	_, err := h.shared.out.Write(buf.Bytes())
	return err
}

type subjectFields struct {
	component string
	renderID  string
	stage     string
}

func subjectOf(fields []kv) subjectFields {
	var s subjectFields
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			s.component = attrString(f.value)
		case FieldRenderID:
			s.renderID = attrString(f.value)
		case FieldStage:
			s.stage = attrString(f.value)
		}
	}
	return s
}

// composeSubject renders "Render 1a2b3c4d (encode)" style subjects.
func composeSubject(renderID, stage string) string {
	renderID = strings.TrimSpace(renderID)
	stage = strings.TrimSpace(stage)
	if len(renderID) > 8 {
		renderID = renderID[:8]
	}
	switch {
	case renderID != "" && stage != "":
		return "Render " + renderID + " (" + stage + ")"
	case renderID != "":
		return "Render " + renderID
	default:
		return stage
	}
}

// changedSince drops info fields whose value matches the last line printed
// for renderID. Warnings and errors print in full but still update the cache.
func (s *consoleState) changedSince(renderID string, fields []infoField, level slog.Level) []infoField {
	if renderID == "" || len(fields) == 0 {
		return fields
	}
	last := s.seen[renderID]
	if last == nil {
		last = make(map[string]string)
		s.seen[renderID] = last
	}
	out := fields[:0:0]
	for _, f := range fields {
		prev, ok := last[f.label]
		last[f.label] = f.value
		if level <= slog.LevelInfo && ok && prev == f.value {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

type kv struct {
	key   string
	value slog.Value
}

// collectFields flattens handler and record attributes into dotted keys. A
// repeated key keeps its first position and its last value.
func collectFields(groups []string, attrs []slog.Attr, record slog.Record) []kv {
	var flat []kv
	for _, a := range attrs {
		flat = appendFlat(flat, groups, a)
	}
	record.Attrs(func(a slog.Attr) bool {
		flat = appendFlat(flat, groups, a)
		return true
	})

	index := make(map[string]int, len(flat))
	out := flat[:0]
	for _, f := range flat {
		if f.key == "" {
			continue
		}
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func appendFlat(dst []kv, prefix []string, a slog.Attr) []kv {
	if a.Equal(slog.Attr{}) {
		return dst
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix = append(prefix[:len(prefix):len(prefix)], a.Key)
		}
		for _, member := range v.Group() {
			dst = appendFlat(dst, prefix, member)
		}
		return dst
	}
	key := a.Key
	if len(prefix) > 0 {
		key = strings.Join(prefix, ".") + "." + key
	}
	return append(dst, kv{key: key, value: v})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
