package logging

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type infoField struct {
	label string
	value string
}

// infoHighlightKeys are printed first, in this order.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	FieldErrorKind,
	"error",
	FieldErrorHint,
	FieldImpact,
	FieldProgressStage,
	FieldProgressPercent,
	FieldProgressMessage,
	FieldProfile,
	"output",
	"duration",
	"groups",
	"segments",
	"output_bytes",
	"elapsed",
}

func selectInfoFields(attrs []kv) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, len(attrs))
	hidden := 0

	take := func(idx int) {
		used[idx] = true
		attr := attrs[idx]
		if skipInfoKey(attr.key) {
			return
		}
		if isDebugOnlyKey(attr.key) {
			hidden++
			return
		}
		value := formatValueForKey(attr.key, attr.value)
		if len(value) > 160 && attr.key != "error" && attr.key != "command" {
			hidden++
			return
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: value})
	}

	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				take(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			take(idx)
		}
	}
	return result, hidden
}

// formatValueForKey applies formatting based on the key name.
func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	switch {
	case strings.HasSuffix(key, "_bytes") && v.Kind() == slog.KindInt64:
		return formatBytes(v.Int64())
	case v.Kind() == slog.KindDuration:
		return formatDurationHuman(v.Duration())
	case strings.HasSuffix(key, "_percent") && v.Kind() == slog.KindFloat64:
		return formatPercent(v.Float64())
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	}
	value := formatValue(v)
	if key == "error" && len(value) > 200 {
		value = value[:200] + "…"
	}
	return value
}

func skipInfoKey(key string) bool {
	switch key {
	case "", FieldComponent, FieldRenderID, FieldStage, FieldSessionID:
		return true
	default:
		return false
	}
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case "command", "args", "stderr_tail", "filter_graph":
		return true
	}
	return strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_dir")
}

func displayLabel(key string) string {
	switch key {
	case FieldEventType:
		return "Event"
	case FieldErrorKind:
		return "Kind"
	case FieldErrorHint:
		return "Hint"
	case FieldProgressMessage:
		return "Progress"
	case "output_bytes":
		return "Size"
	}
	return cases.Title(language.English).String(strings.NewReplacer("_", " ", "-", " ").Replace(key))
}
