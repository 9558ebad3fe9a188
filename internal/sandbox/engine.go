// Package sandbox runs author scripts attached to story nodes.
//
// Every run gets a fresh Lua environment holding a restricted standard library,
// the node's url, description and choices, the player variables and one
// choice_<id> visibility flag per choice. The script is compiled against that
// environment only, run under a protected call with time and memory budgets, and the
// environment is read back into host data. Nothing from a run survives into the
// next one except the interpreter itself.
package sandbox

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"time"

	"cyoa-maker/shared/models"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const chunkName = "user_script"

// Options tunes the resource limits of the engine.
type Options struct {
	// Timeout is the wall-clock budget of one run. Zero means only the caller's context applies.
	Timeout time.Duration
	// CallStackSize caps Lua call depth.
	CallStackSize int
	// RegistryMaxSize caps the Lua value stack. It grows in steps of an eighth of the cap.
	RegistryMaxSize int
	// MaxStringLen caps string.rep results, in bytes. Zero disables the cap.
	MaxStringLen int
	// MaxMemory caps heap growth during one run, in bytes. Zero disables the guard.
	MaxMemory int64
	// EnablePrint exposes print, routed to the debug log.
	EnablePrint bool
}

// DefaultOptions returns the limits used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Timeout:         2 * time.Second,
		CallStackSize:   200,
		RegistryMaxSize: 256 * 1024,
		MaxStringLen:    1 << 20,
		MaxMemory:       256 << 20,
		EnablePrint:     true,
	}
}

// Engine owns one Lua interpreter and serializes access to it.
// It is safe for concurrent use; runs are executed one at a time.
type Engine struct {
	mu     sync.Mutex
	opts   Options
	logger *zap.Logger
	state  *lua.LState
}

// New creates an engine. The interpreter is created on first use.
func New(opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		opts:   opts,
		logger: logger.Named("ScriptSandbox"),
	}
}

// Close releases the interpreter. The engine can still be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.discardState()
}

// Check compiles source without running it. It returns nil or a syntax *models.ScriptError.
func (e *Engine) Check(source string) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.recoverHost(&err)

	L, err := e.acquire()
	if err != nil {
		return models.NewScriptError(models.ScriptErrorHost, err, "interpreter unavailable: %v", err)
	}
	if _, err := L.Load(strings.NewReader(source), chunkName); err != nil {
		return models.NewScriptError(models.ScriptErrorSyntax, err, "%s", luaMessage(err))
	}
	return nil
}

// Execute runs source against the node and player state. On success it returns the
// possibly rewritten url and description, every input player variable read back
// from the environment and the visibility of every choice keyed by its original id.
// Every failure is returned as a *models.ScriptError; the result is then nil.
func (e *Engine) Execute(ctx context.Context, node models.NodeData, player models.PlayerData, source string) (res *models.ScriptResult, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.recoverHost(&err)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, contextFailure(ctxErr)
	}

	flags, err := newFlagTable(node.Choices)
	if err != nil {
		return nil, models.NewScriptError(models.ScriptErrorHost, err, "%v", err)
	}
	if err := checkPlayerKeys(player, flags); err != nil {
		return nil, models.NewScriptError(models.ScriptErrorHost, err, "%v", err)
	}

	L, err := e.acquire()
	if err != nil {
		return nil, models.NewScriptError(models.ScriptErrorHost, err, "interpreter unavailable: %v", err)
	}
	env, err := e.newEnv(L, node, player, flags)
	if err != nil {
		return nil, models.NewScriptError(models.ScriptErrorHost, err, "%v", err)
	}

	fn, err := L.Load(strings.NewReader(source), chunkName)
	if err != nil {
		return nil, models.NewScriptError(models.ScriptErrorSyntax, err, "%s", luaMessage(err))
	}
	L.SetFEnv(fn, env)

	timeCtx, cancel := e.runContext(ctx)
	defer cancel()
	runCtx, cancelRun := context.WithCancelCause(timeCtx)
	defer cancelRun(nil)

	var watch *memoryWatch
	if e.opts.MaxMemory > 0 {
		watch = startMemoryWatch(uint64(e.opts.MaxMemory), cancelRun)
	}

	start := time.Now()
	L.SetContext(runCtx)
	L.Push(fn)
	runErr := L.PCall(0, 0, nil)
	L.RemoveContext()
	L.SetTop(0)

	if watch != nil && watch.stop() {
		e.discardState()
		runtime.GC()
		e.logger.Warn("Script exceeded its memory limit",
			zap.Int64("max_memory", e.opts.MaxMemory),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, models.NewScriptError(models.ScriptErrorRuntime, errMemoryLimit,
			"script used more than %d bytes of memory", e.opts.MaxMemory)
	}
	if runErr != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			// A run cut off mid-instruction may leave the interpreter in any state.
			e.discardState()
			return nil, contextFailure(ctxErr)
		}
		e.logger.Debug("Script raised", zap.Error(runErr))
		return nil, models.NewScriptError(models.ScriptErrorRuntime, runErr, "%s", luaMessage(runErr))
	}

	res = extract(env, player, flags)
	e.logger.Debug("Script executed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("player_vars", len(player)),
		zap.Int("choices", len(flags.order)),
	)
	return res, nil
}

func extract(env *lua.LTable, player models.PlayerData, flags *flagTable) *models.ScriptResult {
	res := &models.ScriptResult{
		URL:               lua.LVAsString(env.RawGetString("url")),
		Description:       lua.LVAsString(env.RawGetString("description")),
		PlayerData:        make(models.PlayerData, len(player)),
		ChoicesVisibility: make(map[string]bool, len(flags.order)),
	}
	for key := range player {
		res.PlayerData[key] = FromLua(env.RawGetString(key))
	}
	for _, flag := range flags.order {
		id, _ := flags.original(flag)
		res.ChoicesVisibility[id] = lua.LVAsBool(env.RawGetString(flag))
	}
	return res
}

func (e *Engine) acquire() (*lua.LState, error) {
	if e.state != nil {
		return e.state, nil
	}
	L, err := newState(e.opts)
	if err != nil {
		return nil, err
	}
	e.state = L
	return L, nil
}

func (e *Engine) discardState() {
	if e.state != nil {
		e.state.Close()
		e.state = nil
	}
}

func (e *Engine) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.Timeout > 0 {
		return context.WithTimeout(ctx, e.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// recoverHost turns a panic inside the harness into a host failure. Must be deferred
// while e.mu is held.
func (e *Engine) recoverHost(err *error) {
	r := recover()
	if r == nil {
		return
	}
	e.discardState()
	e.logger.Error("Sandbox panic recovered", zap.Any("panic", r))
	*err = models.NewScriptError(models.ScriptErrorHost, nil, "sandbox failure: %v", r)
}

func contextFailure(err error) *models.ScriptError {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewScriptError(models.ScriptErrorTimeout, err, "script did not finish within its time budget")
	}
	return models.NewScriptError(models.ScriptErrorCanceled, err, "script execution was canceled")
}

// luaMessage drops the Go-side stack trace gopher-lua appends to API errors.
func luaMessage(err error) string {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return apiErr.Object.String()
	}
	return err.Error()
}
