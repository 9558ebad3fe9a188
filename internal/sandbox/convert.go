package sandbox

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	lua "github.com/yuin/gopher-lua"
)

// maxConvertDepth bounds nested tables in both directions.
const maxConvertDepth = 32

// ToLua converts a host value into a Lua value. Supported: nil, bool, string, every
// Go number type, json.Number, []any and map[string]any (recursively).
func ToLua(L *lua.LState, v any) (lua.LValue, error) {
	return toLua(L, v, 0)
}

func toLua(L *lua.LState, v any, depth int) (lua.LValue, error) {
	if depth > maxConvertDepth {
		return lua.LNil, fmt.Errorf("value nested deeper than %d levels", maxConvertDepth)
	}
	switch val := v.(type) {
	case nil:
		return lua.LNil, nil
	case lua.LValue:
		return val, nil
	case bool:
		return lua.LBool(val), nil
	case string:
		return lua.LString(val), nil
	case float64:
		return lua.LNumber(val), nil
	case float32:
		return lua.LNumber(val), nil
	case int:
		return lua.LNumber(val), nil
	case int8:
		return lua.LNumber(val), nil
	case int16:
		return lua.LNumber(val), nil
	case int32:
		return lua.LNumber(val), nil
	case int64:
		return lua.LNumber(val), nil
	case uint:
		return lua.LNumber(val), nil
	case uint8:
		return lua.LNumber(val), nil
	case uint16:
		return lua.LNumber(val), nil
	case uint32:
		return lua.LNumber(val), nil
	case uint64:
		return lua.LNumber(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return lua.LNil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return lua.LNumber(f), nil
	case []any:
		tbl := L.CreateTable(len(val), 0)
		for i, item := range val {
			lv, err := toLua(L, item, depth+1)
			if err != nil {
				return lua.LNil, fmt.Errorf("[%d]: %w", i+1, err)
			}
			tbl.RawSetInt(i+1, lv)
		}
		return tbl, nil
	case map[string]any:
		tbl := L.CreateTable(0, len(val))
		for _, key := range slices.Sorted(maps.Keys(val)) {
			lv, err := toLua(L, val[key], depth+1)
			if err != nil {
				return lua.LNil, fmt.Errorf("%s: %w", key, err)
			}
			tbl.RawSetString(key, lv)
		}
		return tbl, nil
	default:
		return lua.LNil, fmt.Errorf("unsupported value type %T", v)
	}
}

// FromLua converts a Lua value back into host data: nil, bool, float64, string,
// []any for sequences and map[string]any for other tables. Functions, userdata,
// threads and channels, as well as tables reached twice on one path, become nil.
func FromLua(v lua.LValue) any {
	return fromLua(v, 0, map[*lua.LTable]bool{})
}

func fromLua(v lua.LValue, depth int, path map[*lua.LTable]bool) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if depth >= maxConvertDepth || path[val] {
			return nil
		}
		path[val] = true
		defer delete(path, val)
		return tableFromLua(val, depth, path)
	default:
		return nil
	}
}

func tableFromLua(tbl *lua.LTable, depth int, path map[*lua.LTable]bool) any {
	count := 0
	tbl.ForEach(func(_, _ lua.LValue) { count++ })

	if n := tbl.MaxN(); n == count {
		list := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			list = append(list, fromLua(tbl.RawGetInt(i), depth+1, path))
		}
		return list
	}

	out := make(map[string]any, count)
	tbl.ForEach(func(k, item lua.LValue) {
		key, ok := tableKey(k)
		if !ok {
			return
		}
		out[key] = fromLua(item, depth+1, path)
	})
	return out
}

func tableKey(k lua.LValue) (string, bool) {
	switch key := k.(type) {
	case lua.LString:
		return string(key), true
	case lua.LNumber:
		return strconv.FormatFloat(float64(key), 'f', -1, 64), true
	case lua.LBool:
		return strconv.FormatBool(bool(key)), true
	default:
		return "", false
	}
}
