package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"
)

// String formats the entry as "15:04:05.000 LEVEL message k=v ...", with
// attributes sorted by key.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Time.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(e.Level.String())
	b.WriteByte(' ')
	b.WriteString(e.Message)
	for _, k := range slices.Sorted(maps.Keys(e.Attrs)) {
		fmt.Fprintf(&b, " %s=%s", k, e.Attrs[k])
	}
	return b.String()
}

// ParseJSONLine decodes one line written by the JSON file handler. Nested
// groups are flattened to dotted keys, matching RingHandler.
func ParseJSONLine(line string) (Entry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, fmt.Errorf("failed to decode log line: %w", err)
	}

	var e Entry
	if v, ok := raw[slog.TimeKey].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			e.Time = t
		}
	}
	if v, ok := raw[slog.LevelKey].(string); ok {
		_ = e.Level.UnmarshalText([]byte(v))
	}
	if v, ok := raw[slog.MessageKey].(string); ok {
		e.Message = v
	}
	delete(raw, slog.TimeKey)
	delete(raw, slog.LevelKey)
	delete(raw, slog.MessageKey)

	e.Attrs = make(map[string]string, len(raw))
	flattenAttrs(e.Attrs, "", raw)
	return e, nil
}

func flattenAttrs(dst map[string]string, prefix string, src map[string]any) {
	for k, v := range src {
		if prefix != "" {
			k = prefix + "." + k
		}
		switch v := v.(type) {
		case map[string]any:
			flattenAttrs(dst, k, v)
		case string:
			dst[k] = v
		default:
			dst[k] = fmt.Sprint(v)
		}
	}
}
