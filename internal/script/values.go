package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/filterbus/internal/event/named"
)

// toValue converts a Lua scalar into a normalized parameter value.
func toValue(lv lua.LValue) (any, error) {
	switch v := lv.(type) {
	case lua.LString:
		return string(v), nil
	case lua.LNumber:
		return named.Value(float64(v))
	case lua.LBool:
		return bool(v), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, lv.Type())
	}
}

// toLua converts a parameter value back into Lua.
func toLua(v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// tableParams reads the string-keyed entries of t as event parameters.
func tableParams(t *lua.LTable) (map[string]any, error) {
	params := make(map[string]any)
	var err error
	t.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		name, ok := k.(lua.LString)
		if !ok {
			err = fmt.Errorf("parameter names must be strings, got %s", k.Type())
			return
		}
		val, verr := toValue(v)
		if verr != nil {
			err = fmt.Errorf("parameter %s: %w", name, verr)
			return
		}
		params[string(name)] = val
	})
	if err != nil {
		return nil, err
	}
	return params, nil
}
