// Package scriptgen renders the Lua preamble a new story node script starts with.
package scriptgen

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"cyoa-maker/internal/sandbox"
	"cyoa-maker/shared/models"
)

const (
	flagHint     = "-- choice_{choice_id} = true <- true: enabled; false: disabled"
	footerMarker = "-- The values above will auto update after saving --"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var luaKeywords = map[string]struct{}{
	"and": {}, "break": {}, "do": {}, "else": {}, "elseif": {}, "end": {},
	"false": {}, "for": {}, "function": {}, "if": {}, "in": {}, "local": {},
	"nil": {}, "not": {}, "or": {}, "repeat": {}, "return": {}, "then": {},
	"true": {}, "until": {}, "while": {}, "goto": {},
}

// Preamble renders the node's current url, description, choice flags and choices
// table as Lua assignments. Running it in the sandbox leaves the node unchanged.
func Preamble(node *models.StoryNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "url = %s\n", Quote(node.URL))
	fmt.Fprintf(&b, "description = %s\n\n", Quote(node.Description))
	b.WriteString(flagHint)
	b.WriteByte('\n')
	for _, c := range node.Choices {
		if !sandbox.ScriptableChoiceID(c.ID) {
			fmt.Fprintf(&b, "-- choice %s has no flag usable in scripts\n", Quote(c.ID))
			continue
		}
		fmt.Fprintf(&b, "%s = true\n", sandbox.FlagName(c.ID))
	}
	fmt.Fprintf(&b, "\nchoices = %s\n\n", Literal(node.Choices))
	b.WriteString(footerMarker)
	b.WriteByte('\n')
	return b.String()
}

// Literal renders v as a Lua expression. Maps are rendered with sorted keys.
// Values Literal does not know are rendered as their quoted fmt representation.
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case string:
		return Quote(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return number(val)
	case float32:
		return number(float64(val))
	case models.Choice:
		return Literal(choiceFields(val))
	case []models.Choice:
		items := make([]any, len(val))
		for i, c := range val {
			items[i] = c
		}
		return Literal(items)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Literal(item)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case map[string]any:
		parts := make([]string, 0, len(val))
		for _, key := range slices.Sorted(maps.Keys(val)) {
			parts = append(parts, tableKey(key)+" = "+Literal(val[key]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case models.PlayerData:
		return Literal(map[string]any(val))
	default:
		return Quote(fmt.Sprint(val))
	}
}

// Quote renders s as a double-quoted Lua string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\%03d`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func tableKey(key string) string {
	if _, reserved := luaKeywords[key]; !reserved && identifierRe.MatchString(key) {
		return key
	}
	return "[" + Quote(key) + "]"
}

func number(f float64) string {
	switch {
	case math.IsNaN(f):
		return "(0/0)"
	case math.IsInf(f, 1):
		return "math.huge"
	case math.IsInf(f, -1):
		return "-math.huge"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func choiceFields(c models.Choice) map[string]any {
	fields := map[string]any{
		"id":     c.ID,
		"emoji":  c.Emoji,
		"text":   c.Text,
		"script": c.Script,
	}
	if c.Parent != "" {
		fields["parent"] = c.Parent
	}
	return fields
}
