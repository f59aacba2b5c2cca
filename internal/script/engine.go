package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/filterbus/internal/event"
	"github.com/dshills/filterbus/internal/event/named"
)

// Engine is a sandboxed Lua state bound to one bus.
type Engine struct {
	L *lua.LState

	bus *event.Bus
	reg *named.Registry
	log zerolog.Logger
	out io.Writer

	// handles tracks every subscription made by scripts so Close can detach
	// them before the state goes away.
	handles []*event.Handle
	closed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by bus.log and engine diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithOutput redirects print. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.out = w
	}
}

// WithRegistry shares a name registry with other users of the bus, so a
// script's "hit" is the same event type as theirs.
func WithRegistry(r *named.Registry) Option {
	return func(e *Engine) {
		e.reg = r
	}
}

// New creates an engine driving bus.
func New(bus *event.Bus, opts ...Option) *Engine {
	e := &Engine{
		bus: bus,
		log: zerolog.Nop(),
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reg == nil {
		e.reg = named.NewRegistry()
	}

	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	e.openSafeLibraries()
	e.installPrint()
	e.registerBus()
	return e
}

// openSafeLibraries opens the libraries that cannot reach the host. io, os
// and debug stay closed; package is opened only for require of preloaded
// modules.
func (e *Engine) openSafeLibraries() {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		e.L.Push(e.L.NewFunction(lib.fn))
		e.L.Push(lua.LString(lib.name))
		e.L.Call(1, 0)
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		e.L.SetGlobal(name, lua.LNil)
	}

	// Only preloaded modules may be required.
	if pkg, ok := e.L.GetGlobal("package").(*lua.LTable); ok {
		e.L.SetField(pkg, "path", lua.LString(""))
		e.L.SetField(pkg, "cpath", lua.LString(""))
	}
}

// installPrint replaces print so output goes to the engine writer.
func (e *Engine) installPrint() {
	e.L.SetGlobal("print", e.L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		fmt.Fprintln(e.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// Bus returns the bus the engine drives.
func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// Registry returns the name registry used by scripts.
func (e *Engine) Registry() *named.Registry {
	return e.reg
}

// RunString executes src. name identifies the chunk in errors and logs.
// Cancelling ctx aborts the script.
func (e *Engine) RunString(ctx context.Context, name, src string) error {
	if e.closed {
		return ErrEngineClosed
	}
	fn, err := e.L.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	return e.run(ctx, name, fn)
}

// RunFile executes the script at path.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	if e.closed {
		return ErrEngineClosed
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return e.RunString(ctx, path, string(data))
}

func (e *Engine) run(ctx context.Context, name string, fn *lua.LFunction) (err error) {
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	// Go panics raised below a Lua frame are recovered by gopher-lua and
	// reported as errors. This catches the rest.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script %s: lua panic: %v", name, r)
		}
	}()

	e.log.Debug().Str("script", name).Msg("running script")
	e.L.Push(fn)
	if err := e.L.PCall(0, 0, nil); err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	return nil
}

// Close unsubscribes every listener the engine's scripts registered and
// closes the Lua state. Close is idempotent.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	for _, h := range e.handles {
		h.Unsubscribe()
	}
	e.handles = nil
	e.L.Close()
}
