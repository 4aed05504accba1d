package logging

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Entry is one record kept by a RingHandler.
type Entry struct {
	Time    time.Time         `json:"time"`
	Level   slog.Level        `json:"level"`
	Message string            `json:"message"`
	Attrs   map[string]string `json:"attrs"`
}

// ring is the storage shared by a RingHandler and its derived handlers.
type ring struct {
	mu      sync.RWMutex
	entries []Entry
	maxSize int
}

// RingHandler is an slog.Handler keeping the most recent records in memory,
// for display by the shell's :log command.
type RingHandler struct {
	ring   *ring
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewRingHandler returns a handler keeping at most maxEntries records
// (default 1000) at or above level.
func NewRingHandler(maxEntries int, level slog.Leveler) *RingHandler {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &RingHandler{
		ring:  &ring{entries: make([]Entry, 0, min(maxEntries, 256)), maxSize: maxEntries},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *RingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *RingHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]string, len(h.attrs)+record.NumAttrs())
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range h.attrs {
		flatten(attrs, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		flatten(attrs, prefix, a)
		return true
	})

	entry := Entry{
		Time:    record.Time,
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	}

	r := h.ring
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	if over := len(r.entries) - r.maxSize; over > 0 {
		r.entries = slices.Delete(r.entries, 0, over)
	}
	return nil
}

func flatten(dst map[string]string, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			flatten(dst, p, ga)
		}
		return
	}
	dst[prefix+a.Key] = a.Value.String()
}

// WithAttrs implements slog.Handler.
func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	h2.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		if prefix != "" {
			a = slog.Attr{Key: strings.TrimSuffix(prefix, ".") + "." + a.Key, Value: a.Value}
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup implements slog.Handler.
func (h *RingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(slices.Clone(h.groups), name)
	return &h2
}

// Entries returns a copy of all retained entries, oldest first.
func (h *RingHandler) Entries() []Entry {
	return h.Recent(0)
}

// Recent returns the most recent count entries, oldest first. A count of
// zero or less returns everything.
func (h *RingHandler) Recent(count int) []Entry {
	r := h.ring
	r.mu.RLock()
	defer r.mu.RUnlock()
	if count <= 0 || count > len(r.entries) {
		count = len(r.entries)
	}
	return slices.Clone(r.entries[len(r.entries)-count:])
}

// Search returns entries whose message, attribute key or attribute value
// contains query, case-insensitively.
func (h *RingHandler) Search(query string) []Entry {
	r := h.ring
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(query)
	var matches []Entry
	for _, entry := range r.entries {
		if strings.Contains(strings.ToLower(entry.Message), query) {
			matches = append(matches, entry)
			continue
		}
		for key, value := range entry.Attrs {
			if strings.Contains(strings.ToLower(key), query) ||
				strings.Contains(strings.ToLower(value), query) {
				matches = append(matches, entry)
				break
			}
		}
	}
	return matches
}

// Clear removes all entries.
func (h *RingHandler) Clear() {
	r := h.ring
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = r.entries[:0]
}

var _ slog.Handler = (*RingHandler)(nil)
