package models

import (
	"maps"
	"slices"
	"strings"
)

// DefaultEmojiSchemaText is the schema a new project starts with.
const DefaultEmojiSchemaText = "A -> 🇦\nB -> 🇧\nC -> 🇨\nD -> 🇩"

// DefaultEmojiSchema returns DefaultEmojiSchemaText parsed.
func DefaultEmojiSchema() map[string]string {
	return ParseEmojiSchema(DefaultEmojiSchemaText)
}

// ParseEmojiSchema reads "VARIABLE -> EMOJI" lines. Blank or malformed lines are skipped.
func ParseEmojiSchema(text string) map[string]string {
	schema := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "->")
		if len(parts) != 2 {
			continue
		}
		variable := strings.TrimSpace(parts[0])
		emoji := strings.TrimSpace(parts[1])
		if variable == "" {
			continue
		}
		schema[variable] = emoji
	}
	return schema
}

// FormatEmojiSchema renders the schema back to text, one mapping per line, sorted by variable.
func FormatEmojiSchema(schema map[string]string) string {
	lines := make([]string, 0, len(schema))
	for _, variable := range slices.Sorted(maps.Keys(schema)) {
		lines = append(lines, variable+" -> "+schema[variable])
	}
	return strings.Join(lines, "\n")
}
