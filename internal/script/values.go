package script

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textnav/internal/engine/element"
	"github.com/dshills/textnav/internal/engine/layout"
)

// toGo converts a Lua value into plain Go data: nil, bool, float64 or
// int, string, []any, map[string]any. Ranges become a map with their
// offsets and text.
func toGo(v lua.LValue) any {
	switch lv := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(lv)
	case lua.LNumber:
		f := float64(lv)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return f
	case lua.LString:
		return string(lv)
	case *lua.LUserData:
		if r, ok := lv.Value.(*rangeValue); ok {
			return r.describe()
		}
		return fmt.Sprintf("%v", lv.Value)
	case *lua.LTable:
		return tableToGo(lv)
	default:
		return v.String()
	}
}

func tableToGo(t *lua.LTable) any {
	if n := t.Len(); n > 0 {
		list := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			list = append(list, toGo(t.RawGetInt(i)))
		}
		return list
	}
	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGo(v)
	})
	return m
}

// attrToLua converts an attribute value for scripts. Values without a
// natural Lua type are passed by name.
func attrToLua(v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case colorful.Color:
		return lua.LString(x.Hex())
	case fmt.Stringer:
		return lua.LString(x.String())
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// luaToAttr converts a script value into the loose form attr.Kind.Parse
// accepts.
func luaToAttr(v lua.LValue) any {
	switch lv := v.(type) {
	case lua.LBool:
		return bool(lv)
	case lua.LNumber:
		return float64(lv)
	case lua.LString:
		return string(lv)
	default:
		return nil
	}
}

func rectsToLua(L *lua.LState, rects []layout.Rect) *lua.LTable {
	tbl := L.CreateTable(len(rects), 0)
	for _, r := range rects {
		rt := L.CreateTable(0, 4)
		rt.RawSetString("x", lua.LNumber(r.X))
		rt.RawSetString("y", lua.LNumber(r.Y))
		rt.RawSetString("width", lua.LNumber(r.Width))
		rt.RawSetString("height", lua.LNumber(r.Height))
		tbl.Append(rt)
	}
	return tbl
}

func elementToLua(L *lua.LState, el *element.Element) lua.LValue {
	if el == nil {
		return lua.LNil
	}
	tbl := L.CreateTable(0, 3)
	tbl.RawSetString("name", lua.LString(el.Name))
	tbl.RawSetString("role", lua.LString(el.Role))
	tbl.RawSetString("id", lua.LString(el.ID.String()))
	return tbl
}
