package script

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/filterbus/internal/event"
	"github.com/dshills/filterbus/internal/event/named"
)

// Userdata type names.
const (
	paramTypeName  = "bus.param"
	condTypeName   = "bus.cond"
	handleTypeName = "bus.handle"
	eventTypeName  = "bus.event"
)

// registerBus installs the bus module as a preloaded module and a global.
func (e *Engine) registerBus() {
	L := e.L

	e.newType(paramTypeName, map[string]lua.LGFunction{
		"is":   e.paramIs,
		"name": e.paramName,
	}, func(ud *lua.LUserData) string {
		return "param(" + ud.Value.(event.Param[any]).Name() + ")"
	})
	e.newType(condTypeName, map[string]lua.LGFunction{}, func(ud *lua.LUserData) string {
		return ud.Value.(event.Cond).String()
	})
	e.newType(handleTypeName, map[string]lua.LGFunction{
		"unsubscribe": e.handleUnsubscribe,
		"active":      e.handleActive,
		"id":          e.handleID,
	}, func(ud *lua.LUserData) string {
		return "handle(" + ud.Value.(*event.Handle).ID() + ")"
	})
	e.newType(eventTypeName, map[string]lua.LGFunction{
		"get":     e.eventGet,
		"params":  e.eventParams,
		"stop":    e.eventStop,
		"stopped": e.eventStopped,
		"name":    e.eventName,
	}, func(ud *lua.LUserData) string {
		return "event(" + ud.Value.(*named.Event).Type + ")"
	})

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"param":       e.param,
		"listen":      e.listen,
		"raise":       e.raise,
		"clear_all":   e.clearAll,
		"count":       e.count,
		"dispatching": e.dispatching,
		"log":         e.logMessage,
	})
	L.PreloadModule("bus", func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	L.SetGlobal("bus", mod)
}

func (e *Engine) newType(name string, methods map[string]lua.LGFunction, str func(*lua.LUserData) string) {
	L := e.L
	mt := L.NewTypeMetatable(name)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), methods))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(str(L.CheckUserData(1))))
		return 1
	}))
}

func (e *Engine) push(L *lua.LState, typeName string, v any) {
	ud := L.NewUserData()
	ud.Value = v
	L.SetMetatable(ud, L.GetTypeMetatable(typeName))
	L.Push(ud)
}

// check returns argument n as userdata of typeName.
func check[T any](L *lua.LState, n int, typeName string) T {
	ud := L.CheckUserData(n)
	v, ok := ud.Value.(T)
	if !ok {
		L.ArgError(n, typeName+" expected")
	}
	return v
}

// bus.param(name) -> param
func (e *Engine) param(L *lua.LState) int {
	name := L.CheckString(1)
	if name == "" {
		L.ArgError(1, "parameter name cannot be empty")
		return 0
	}
	e.push(L, paramTypeName, e.reg.Param(name))
	return 1
}

// param:is(value) -> cond
func (e *Engine) paramIs(L *lua.LState) int {
	p := check[event.Param[any]](L, 1, paramTypeName)
	v, err := toValue(L.CheckAny(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	e.push(L, condTypeName, p.Is(v))
	return 1
}

// param:name() -> string
func (e *Engine) paramName(L *lua.LState) int {
	p := check[event.Param[any]](L, 1, paramTypeName)
	L.Push(lua.LString(p.Name()))
	return 1
}

// bus.listen(event, [filters], fn) -> handle
func (e *Engine) listen(L *lua.LState) int {
	name := L.CheckString(1)
	if name == "" {
		L.ArgError(1, "event type cannot be empty")
		return 0
	}

	var filters *lua.LTable
	var fn *lua.LFunction
	if L.Get(2).Type() == lua.LTFunction {
		fn = L.CheckFunction(2)
	} else {
		filters = L.OptTable(2, nil)
		fn = L.CheckFunction(3)
	}

	conds, err := e.conds(filters)
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}

	q := e.reg.Type(name).On(e.bus)
	for _, c := range conds {
		q = q.Where(c)
	}
	h := q.ListenFunc(func(ev *named.Event) {
		e.call(fn, ev)
	})
	e.handles = append(e.handles, h)

	e.push(L, handleTypeName, h)
	return 1
}

// conds reads a filter table: list entries in order, then string keys sorted.
func (e *Engine) conds(t *lua.LTable) ([]event.Cond, error) {
	if t == nil {
		return nil, nil
	}

	var conds []event.Cond
	for i := 1; i <= t.Len(); i++ {
		c, err := e.cond(t.RawGetInt(i))
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		conds = append(conds, c)
	}

	var keys []string
	t.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); ok {
			keys = append(keys, string(s))
		}
	})
	sort.Strings(keys)
	for _, k := range keys {
		v, err := toValue(t.RawGetString(k))
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", k, err)
		}
		c, err := e.reg.Cond(k, v)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func (e *Engine) cond(lv lua.LValue) (event.Cond, error) {
	switch v := lv.(type) {
	case *lua.LUserData:
		if c, ok := v.Value.(event.Cond); ok {
			return c, nil
		}
	case *lua.LTable:
		name, ok := v.RawGetInt(1).(lua.LString)
		if ok && v.Len() == 2 {
			val, err := toValue(v.RawGetInt(2))
			if err != nil {
				return event.Cond{}, err
			}
			return e.reg.Cond(string(name), val)
		}
	}
	return event.Cond{}, fmt.Errorf("expected param:is(value) or {name, value}, got %s", lv.Type())
}

// call invokes a Lua listener. Errors propagate as panics through the
// dispatch and are recovered by the PCall running the script. A listener
// reached after Close in the same dispatch is skipped.
func (e *Engine) call(fn *lua.LFunction, ev *named.Event) {
	if e.closed {
		return
	}
	ud := e.L.NewUserData()
	ud.Value = ev
	e.L.SetMetatable(ud, e.L.GetTypeMetatable(eventTypeName))
	if err := e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: false}, ud); err != nil {
		panic(err)
	}
}

// bus.raise(event, [params]) -> stopped
func (e *Engine) raise(L *lua.LState) int {
	name := L.CheckString(1)
	if name == "" {
		L.ArgError(1, "event type cannot be empty")
		return 0
	}

	params := map[string]any{}
	if t := L.OptTable(2, nil); t != nil {
		p, err := tableParams(t)
		if err != nil {
			L.ArgError(2, err.Error())
			return 0
		}
		params = p
	}

	ev, err := e.reg.New(name, params)
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	e.reg.Type(name).Raise(e.bus, ev)
	L.Push(lua.LBool(ev.Stopped()))
	return 1
}

// bus.clear_all()
func (e *Engine) clearAll(L *lua.LState) int {
	e.bus.ClearAll()
	return 0
}

// bus.count(event) -> number
func (e *Engine) count(L *lua.LState) int {
	name := L.CheckString(1)
	L.Push(lua.LNumber(e.reg.Type(name).Listeners(e.bus)))
	return 1
}

// bus.dispatching() -> bool
func (e *Engine) dispatching(L *lua.LState) int {
	L.Push(lua.LBool(e.bus.Dispatching()))
	return 1
}

// bus.log(msg)
func (e *Engine) logMessage(L *lua.LState) int {
	msg := L.CheckString(1)
	e.log.Info().Str("component", "script").Msg(msg)
	return 0
}

// handle:unsubscribe()
func (e *Engine) handleUnsubscribe(L *lua.LState) int {
	check[*event.Handle](L, 1, handleTypeName).Unsubscribe()
	return 0
}

// handle:active() -> bool
func (e *Engine) handleActive(L *lua.LState) int {
	L.Push(lua.LBool(check[*event.Handle](L, 1, handleTypeName).Active()))
	return 1
}

// handle:id() -> string
func (e *Engine) handleID(L *lua.LState) int {
	L.Push(lua.LString(check[*event.Handle](L, 1, handleTypeName).ID()))
	return 1
}

// ev:get(name) -> value or nil
func (e *Engine) eventGet(L *lua.LState) int {
	ev := check[*named.Event](L, 1, eventTypeName)
	v, ok := e.reg.Get(ev, L.CheckString(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(toLua(v))
	return 1
}

// ev:params() -> table
func (e *Engine) eventParams(L *lua.LState) int {
	ev := check[*named.Event](L, 1, eventTypeName)
	t := L.NewTable()
	for _, c := range ev.Params() {
		t.RawSetString(c.Kind().Name(), toLua(c.Value()))
	}
	L.Push(t)
	return 1
}

// ev:stop()
func (e *Engine) eventStop(L *lua.LState) int {
	check[*named.Event](L, 1, eventTypeName).StopPropagation()
	return 0
}

// ev:stopped() -> bool
func (e *Engine) eventStopped(L *lua.LState) int {
	L.Push(lua.LBool(check[*named.Event](L, 1, eventTypeName).Stopped()))
	return 1
}

// ev:name() -> string
func (e *Engine) eventName(L *lua.LState) int {
	L.Push(lua.LString(check[*named.Event](L, 1, eventTypeName).Type))
	return 1
}
