package sandbox

import (
	"fmt"
	"strings"

	"cyoa-maker/shared/models"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// baseFunctions are the base library entries copied into every environment.
// Loading code (load, loadstring, dofile, loadfile, require), reaching outside the
// environment (getfenv, setfenv, getmetatable, _G) and collectgarbage stay out.
var baseFunctions = []string{
	"assert", "error", "ipairs", "pairs", "next", "pcall", "xpcall", "select",
	"tonumber", "tostring", "type", "unpack", "rawequal", "rawget", "rawset",
	"setmetatable", "_VERSION",
}

// libraries are the library tables copied into every environment.
var libraries = []string{lua.StringLibName, lua.TabLibName, lua.MathLibName}

// newState creates the interpreter with only the base, table, string and math
// libraries opened. os, io, debug, package and channel are never loaded.
func newState(opts Options) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:     true,
		CallStackSize:    opts.CallStackSize,
		RegistryMaxSize:  opts.RegistryMaxSize,
		RegistryGrowStep: registryGrowStep(opts.RegistryMaxSize),
	})

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("open lua library %q: %w", lib.name, err)
		}
	}

	// The string metatable points at this table too, so ("x"):rep(n) is capped as well.
	if strlib, ok := L.GetGlobal(lua.StringLibName).(*lua.LTable); ok && opts.MaxStringLen > 0 {
		strlib.RawSetString("rep", L.NewFunction(boundedRep(opts.MaxStringLen)))
	}
	return L, nil
}

// registryGrowStep keeps the number of value stack copies constant. Growing by
// gopher-lua's default step makes filling a large stack quadratic.
func registryGrowStep(maxSize int) int {
	return max(lua.RegistryGrowStep, maxSize/8)
}

// boundedRep is string.rep refusing to build strings longer than limit bytes.
func boundedRep(limit int) lua.LGFunction {
	return func(L *lua.LState) int {
		s := L.CheckString(1)
		n := L.CheckInt(2)
		if n <= 0 || s == "" {
			L.Push(lua.LString(""))
			return 1
		}
		if len(s) > limit/n {
			L.RaiseError("string.rep: result longer than %d bytes", limit)
			return 0
		}
		L.Push(lua.LString(strings.Repeat(s, n)))
		return 1
	}
}

// newEnv builds the single-use environment of one run. Library tables are copied
// so that a script replacing string.format or math.random only changes its own copy.
func (e *Engine) newEnv(L *lua.LState, node models.NodeData, player models.PlayerData, flags *flagTable) (*lua.LTable, error) {
	env := L.NewTable()
	globals := L.G.Global

	for _, name := range baseFunctions {
		env.RawSetString(name, globals.RawGetString(name))
	}
	for _, name := range libraries {
		lib, ok := globals.RawGetString(name).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("library %q is not loaded", name)
		}
		env.RawSetString(name, copyTable(L, lib))
	}
	if e.opts.EnablePrint {
		env.RawSetString("print", L.NewFunction(e.print))
	}

	env.RawSetString("url", lua.LString(node.URL))
	env.RawSetString("description", lua.LString(node.Description))
	env.RawSetString("choices", choicesTable(L, node.Choices))

	for key, value := range player {
		lv, err := ToLua(L, value)
		if err != nil {
			return nil, fmt.Errorf("%w: player variable %q: %v", models.ErrInvalidInput, key, err)
		}
		env.RawSetString(key, lv)
	}

	for _, flag := range flags.order {
		env.RawSetString(flag, lua.LTrue)
	}
	return env, nil
}

func copyTable(L *lua.LState, src *lua.LTable) *lua.LTable {
	dst := L.NewTable()
	src.ForEach(func(k, v lua.LValue) {
		dst.RawSet(k, v)
	})
	return dst
}

func choicesTable(L *lua.LState, choices []models.Choice) *lua.LTable {
	list := L.CreateTable(len(choices), 0)
	for _, c := range choices {
		item := L.CreateTable(0, 5)
		item.RawSetString("id", lua.LString(c.ID))
		item.RawSetString("emoji", lua.LString(c.Emoji))
		item.RawSetString("text", lua.LString(c.Text))
		item.RawSetString("script", lua.LString(c.Script))
		if c.Parent != "" {
			item.RawSetString("parent", lua.LString(c.Parent))
		}
		list.Append(item)
	}
	return list
}

// print writes the script's output to the debug log. Nothing reads it back.
func (e *Engine) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, top)
	for i := 1; i <= top; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	e.logger.Debug("Script output", zap.String("line", strings.Join(parts, "\t")))
	return 0
}
