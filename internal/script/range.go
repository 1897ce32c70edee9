package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textnav/internal/engine/attr"
	"github.com/dshills/textnav/internal/engine/errkind"
	"github.com/dshills/textnav/internal/engine/textrange"
	"github.com/dshills/textnav/internal/engine/unit"
)

const rangeTypeName = "textnav.range"

// rangeValue is the userdata payload behind a script range.
type rangeValue struct {
	r *textrange.TextRange
}

// describe returns the plain form used by emit.
func (v *rangeValue) describe() map[string]any {
	m := map[string]any{"start": v.r.Start(), "end": v.r.End()}
	if text, err := v.r.GetText(-1); err == nil {
		m["text"] = text
	} else {
		m["stale"] = true
	}
	return m
}

var rangeMethods = map[string]lua.LGFunction{
	"span":                   rangeSpan,
	"is_degenerate":          rangeIsDegenerate,
	"clone":                  rangeClone,
	"compare":                rangeCompare,
	"compare_endpoints":      rangeCompareEndpoints,
	"move":                   rangeMove,
	"move_endpoint_by_unit":  rangeMoveEndpointByUnit,
	"move_endpoint_by_range": rangeMoveEndpointByRange,
	"expand":                 rangeExpand,
	"find_text":              rangeFindText,
	"find_attribute":         rangeFindAttribute,
	"attribute":              rangeAttribute,
	"text":                   rangeText,
	"rects":                  rangeRects,
	"scroll_into_view":       rangeScrollIntoView,
	"enclosing_element":      rangeEnclosingElement,
	"children":               rangeChildren,
	"select":                 rangeSelect,
	"add_to_selection":       rangeAddToSelection,
	"remove_from_selection":  rangeRemoveFromSelection,
}

func registerRangeType(L *lua.LState) {
	mt := L.NewTypeMetatable(rangeTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), rangeMethods))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkRange(L, 1).String()))
		return 1
	}))
	L.SetField(mt, "__eq", L.NewFunction(rangeCompare))
}

func pushRange(L *lua.LState, r *textrange.TextRange) {
	if r == nil {
		L.Push(lua.LNil)
		return
	}
	ud := L.NewUserData()
	ud.Value = &rangeValue{r: r}
	L.SetMetatable(ud, L.GetTypeMetatable(rangeTypeName))
	L.Push(ud)
}

func pushRanges(L *lua.LState, rs []*textrange.TextRange) {
	tbl := L.CreateTable(len(rs), 0)
	for _, r := range rs {
		ud := L.NewUserData()
		ud.Value = &rangeValue{r: r}
		L.SetMetatable(ud, L.GetTypeMetatable(rangeTypeName))
		tbl.Append(ud)
	}
	L.Push(tbl)
}

func checkRange(L *lua.LState, n int) *textrange.TextRange {
	ud := L.CheckUserData(n)
	v, ok := ud.Value.(*rangeValue)
	if !ok {
		L.ArgError(n, "range expected")
		return nil
	}
	return v.r
}

// peerRange returns the range argument at n, raising NullArgument for nil.
func peerRange(L *lua.LState, n int, op string) *textrange.TextRange {
	if L.Get(n) == lua.LNil {
		raiseKind(L, op, errkind.NullArgument, "range is nil")
		return nil
	}
	return checkRange(L, n)
}

func checkUnit(L *lua.LState, n int, op string) unit.Unit {
	name := L.CheckString(n)
	u, err := unit.Parse(name)
	if err != nil {
		raiseKind(L, op, errkind.InvalidArgument, "%v", err)
	}
	return u
}

func checkEndpoint(L *lua.LState, n int, op string) textrange.Endpoint {
	ep, err := textrange.ParseEndpoint(L.CheckString(n))
	if err != nil {
		raiseKind(L, op, errkind.InvalidArgument, "%v", err)
	}
	return ep
}

func checkKind(L *lua.LState, n int, op string) *attr.Kind {
	if L.Get(n) == lua.LNil {
		raiseKind(L, op, errkind.NullArgument, "attribute is nil")
		return nil
	}
	name := L.CheckString(n)
	k, ok := attr.Lookup(name)
	if !ok {
		raiseKind(L, op, errkind.InvalidArgument, "unknown attribute %q", name)
	}
	return k
}

// r:span() -> start, end
func rangeSpan(L *lua.LState) int {
	r := checkRange(L, 1)
	L.Push(lua.LNumber(r.Start()))
	L.Push(lua.LNumber(r.End()))
	return 2
}

// r:is_degenerate() -> bool
func rangeIsDegenerate(L *lua.LState) int {
	L.Push(lua.LBool(checkRange(L, 1).IsDegenerate()))
	return 1
}

// r:clone() -> range
func rangeClone(L *lua.LState) int {
	pushRange(L, checkRange(L, 1).Clone())
	return 1
}

// r:compare(other) -> bool
func rangeCompare(L *lua.LState) int {
	r := checkRange(L, 1)
	eq, err := r.Compare(peerRange(L, 2, "compare"))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LBool(eq))
	return 1
}

// r:compare_endpoints(ep, other, other_ep) -> -1|0|1
func rangeCompareEndpoints(L *lua.LState) int {
	const op = "compare_endpoints"
	r := checkRange(L, 1)
	ep := checkEndpoint(L, 2, op)
	other := peerRange(L, 3, op)
	otherEp := checkEndpoint(L, 4, op)
	c, err := r.CompareEndpoints(ep, other, otherEp)
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LNumber(c))
	return 1
}

// r:move(unit, count) -> moved
func rangeMove(L *lua.LState) int {
	r := checkRange(L, 1)
	u := checkUnit(L, 2, "move")
	moved, err := r.Move(u, L.CheckInt(3))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LNumber(moved))
	return 1
}

// r:move_endpoint_by_unit(ep, unit, count) -> moved
func rangeMoveEndpointByUnit(L *lua.LState) int {
	const op = "move_endpoint_by_unit"
	r := checkRange(L, 1)
	ep := checkEndpoint(L, 2, op)
	u := checkUnit(L, 3, op)
	moved, err := r.MoveEndpointByUnit(ep, u, L.CheckInt(4))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LNumber(moved))
	return 1
}

// r:move_endpoint_by_range(ep, other, other_ep)
func rangeMoveEndpointByRange(L *lua.LState) int {
	const op = "move_endpoint_by_range"
	r := checkRange(L, 1)
	ep := checkEndpoint(L, 2, op)
	other := peerRange(L, 3, op)
	otherEp := checkEndpoint(L, 4, op)
	if err := r.MoveEndpointByRange(ep, other, otherEp); err != nil {
		return raise(L, err)
	}
	return 0
}

// r:expand(unit)
func rangeExpand(L *lua.LState) int {
	r := checkRange(L, 1)
	if err := r.ExpandToEnclosingUnit(checkUnit(L, 2, "expand")); err != nil {
		return raise(L, err)
	}
	return 0
}

// r:find_text(text, backward, ignore_case) -> range|nil
func rangeFindText(L *lua.LState) int {
	r := checkRange(L, 1)
	if L.Get(2) == lua.LNil {
		return raiseKind(L, "find_text", errkind.NullArgument, "text is nil")
	}
	found, err := r.FindText(L.CheckString(2), L.OptBool(3, false), L.OptBool(4, false))
	if err != nil {
		return raise(L, err)
	}
	pushRange(L, found)
	return 1
}

// r:find_attribute(name, value, backward) -> range|nil
func rangeFindAttribute(L *lua.LState) int {
	const op = "find_attribute"
	r := checkRange(L, 1)
	kind := checkKind(L, 2, op)
	if L.Get(3) == lua.LNil {
		return raiseKind(L, op, errkind.NullArgument, "value is nil")
	}
	v, err := kind.Parse(luaToAttr(L.Get(3)))
	if err != nil {
		return raiseKind(L, op, errkind.InvalidArgument, "%v", err)
	}
	found, err := r.FindAttribute(kind, v, L.OptBool(4, false))
	if err != nil {
		return raise(L, err)
	}
	pushRange(L, found)
	return 1
}

// r:attribute(name) -> value
func rangeAttribute(L *lua.LState) int {
	r := checkRange(L, 1)
	v, err := r.GetAttributeValue(checkKind(L, 2, "attribute"))
	if err != nil {
		return raise(L, err)
	}
	L.Push(attrToLua(v))
	return 1
}

// r:text([max]) -> string
func rangeText(L *lua.LState) int {
	r := checkRange(L, 1)
	s, err := r.GetText(L.OptInt(2, -1))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(s))
	return 1
}

// r:rects() -> {{x, y, width, height}, ...}
func rangeRects(L *lua.LState) int {
	rects, err := checkRange(L, 1).GetBoundingRectangles()
	if err != nil {
		return raise(L, err)
	}
	L.Push(rectsToLua(L, rects))
	return 1
}

// r:scroll_into_view(align_top)
func rangeScrollIntoView(L *lua.LState) int {
	r := checkRange(L, 1)
	if err := r.ScrollIntoView(L.OptBool(2, true)); err != nil {
		return raise(L, err)
	}
	return 0
}

// r:enclosing_element() -> {name, role, id}
func rangeEnclosingElement(L *lua.LState) int {
	el, err := checkRange(L, 1).GetEnclosingElement()
	if err != nil {
		return raise(L, err)
	}
	L.Push(elementToLua(L, el))
	return 1
}

// r:children() -> {{name, role, id}, ...}
func rangeChildren(L *lua.LState) int {
	els, err := checkRange(L, 1).GetChildren()
	if err != nil {
		return raise(L, err)
	}
	tbl := L.CreateTable(len(els), 0)
	for _, el := range els {
		tbl.Append(elementToLua(L, el))
	}
	L.Push(tbl)
	return 1
}

func rangeSelect(L *lua.LState) int {
	if err := checkRange(L, 1).Select(); err != nil {
		return raise(L, err)
	}
	return 0
}

func rangeAddToSelection(L *lua.LState) int {
	if err := checkRange(L, 1).AddToSelection(); err != nil {
		return raise(L, err)
	}
	return 0
}

func rangeRemoveFromSelection(L *lua.LState) int {
	if err := checkRange(L, 1).RemoveFromSelection(); err != nil {
		return raise(L, err)
	}
	return 0
}
