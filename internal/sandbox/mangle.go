package sandbox

import (
	"fmt"
	"strings"

	"cyoa-maker/shared/models"
)

// FlagPrefix starts the name of every choice visibility flag in the script environment.
const FlagPrefix = "choice_"

// Mangle turns a choice identifier into a name usable as a bare Lua identifier
// by replacing every hyphen with an underscore. It is not invertible on its own:
// the original id is recovered only through the per-run flag table.
func Mangle(id string) string {
	return strings.ReplaceAll(id, "-", "_")
}

// FlagName is the environment key holding the visibility of the choice with the given id.
func FlagName(id string) string {
	return FlagPrefix + Mangle(id)
}

// ScriptableChoiceID reports whether the flag of the choice id is a bare Lua name,
// so scripts can assign it directly. Ids may hold letters, digits, '_' and '-'.
func ScriptableChoiceID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// flagTable is the round-trip table of one run: flag name to original choice id,
// plus the flag names in node order.
type flagTable struct {
	byFlag map[string]string
	order  []string
}

// newFlagTable maps every choice to its flag. Two distinct ids that mangle to the
// same flag are rejected; repeated identical ids share one flag.
func newFlagTable(choices []models.Choice) (*flagTable, error) {
	t := &flagTable{byFlag: make(map[string]string, len(choices))}
	for i, c := range choices {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: choice at index %d has no id", models.ErrInvalidInput, i)
		}
		flag := FlagName(c.ID)
		if prev, ok := t.byFlag[flag]; ok {
			if prev == c.ID {
				continue
			}
			return nil, fmt.Errorf("%w: %q and %q both map to %s", models.ErrIdentifierCollision, prev, c.ID, flag)
		}
		t.byFlag[flag] = c.ID
		t.order = append(t.order, flag)
	}
	return t, nil
}

// original returns the choice id behind a flag name.
func (t *flagTable) original(flag string) (string, bool) {
	id, ok := t.byFlag[flag]
	return id, ok
}

// reservedNames are the environment keys the engine writes besides player data.
var reservedNames = map[string]struct{}{
	"url":         {},
	"description": {},
	"choices":     {},
}

// checkPlayerKeys rejects player variables that would overwrite engine-owned keys.
func checkPlayerKeys(player models.PlayerData, flags *flagTable) error {
	for key := range player {
		if key == "" {
			return fmt.Errorf("%w: empty player variable name", models.ErrInvalidInput)
		}
		if _, ok := reservedNames[key]; ok {
			return fmt.Errorf("%w: %q", models.ErrReservedName, key)
		}
		if id, ok := flags.original(key); ok {
			return fmt.Errorf("%w: %q is the visibility flag of choice %q", models.ErrReservedName, key, id)
		}
	}
	return nil
}

// IsReserved reports whether key can never be used as a player variable.
func IsReserved(key string) bool {
	if _, ok := reservedNames[key]; ok {
		return true
	}
	return strings.HasPrefix(key, FlagPrefix)
}
