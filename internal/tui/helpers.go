package tui

import (
	"strings"

	"github.com/existflow/irontodo/internal/model"
)

// truncate shortens a string to max runes with ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// entryEscaper protects the field separator inside field values
var entryEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)

// parseEntry splits "title | description | date" input. Missing parts are empty.
// A literal bar is written as \| and a literal backslash before a bar as \\.
func parseEntry(value string) (title, description, due string) {
	parts := splitEntry(value, 3)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	title = parts[0]
	if len(parts) > 1 {
		description = parts[1]
	}
	if len(parts) > 2 {
		due = parts[2]
	}
	return title, description, due
}

// splitEntry splits value on unescaped bars into at most n fields
func splitEntry(value string, n int) []string {
	var parts []string
	var cur strings.Builder
	escaped := false
	for _, r := range value {
		switch {
		case escaped:
			if r != '|' && r != '\\' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|' && len(parts) < n-1:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	return append(parts, cur.String())
}

// formatEntry is the inverse of parseEntry, used to prefill the edit input
func formatEntry(t model.Todo) string {
	title := entryEscaper.Replace(t.Title)
	description := entryEscaper.Replace(t.Description)
	switch {
	case t.DueDate != "":
		return title + " | " + description + " | " + t.DueDate
	case t.Description != "":
		return title + " | " + description
	default:
		return title
	}
}

// nextFilter cycles all -> active -> completed
func nextFilter(f model.Filter) model.Filter {
	switch f {
	case model.FilterAll:
		return model.FilterActive
	case model.FilterActive:
		return model.FilterCompleted
	default:
		return model.FilterAll
	}
}
