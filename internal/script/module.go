package script

import (
	"github.com/tidwall/match"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textnav/internal/engine/element"
	"github.com/dshills/textnav/internal/engine/errkind"
	"github.com/dshills/textnav/internal/engine/layout"
)

// registerDocModule installs the global doc table.
func registerDocModule(L *lua.LState, s *State) {
	mod := L.NewTable()

	L.SetField(mod, "range", L.NewFunction(s.docRange))
	L.SetField(mod, "from_point", L.NewFunction(s.fromPoint))
	L.SetField(mod, "from_child", L.NewFunction(s.fromChild))
	L.SetField(mod, "children", L.NewFunction(s.children))
	L.SetField(mod, "selection", L.NewFunction(s.selection))
	L.SetField(mod, "selection_mode", L.NewFunction(s.selectionMode))
	L.SetField(mod, "visible", L.NewFunction(s.visible))
	L.SetField(mod, "root", L.NewFunction(s.root))
	L.SetField(mod, "text", L.NewFunction(s.text))
	L.SetField(mod, "length", L.NewFunction(s.length))
	L.SetField(mod, "revision", L.NewFunction(s.revision))
	L.SetField(mod, "insert", L.NewFunction(s.insert))
	L.SetField(mod, "delete", L.NewFunction(s.delete))
	L.SetField(mod, "replace", L.NewFunction(s.replace))
	L.SetField(mod, "scroll_to", L.NewFunction(s.scrollTo))

	L.SetGlobal("doc", mod)
}

// doc.range() -> range over the whole document
func (s *State) docRange(L *lua.LState) int {
	pushRange(L, s.provider.DocumentRange())
	return 1
}

// doc.from_point(x, y) -> degenerate range nearest the point
func (s *State) fromPoint(L *lua.LState) int {
	if L.Get(1) == lua.LNil || L.Get(2) == lua.LNil {
		return raiseKind(L, "from_point", errkind.NullArgument, "point is nil")
	}
	pt := layout.Point{X: float64(L.CheckNumber(1)), Y: float64(L.CheckNumber(2))}
	pushRange(L, s.provider.RangeFromPoint(pt))
	return 1
}

// findChild returns the first child whose name matches pattern.
func (s *State) findChild(pattern string) *element.Element {
	for _, c := range s.el.Document().ChildSpans() {
		if match.Match(c.Element.Name, pattern) {
			return c.Element
		}
	}
	return nil
}

// doc.from_child(pattern) -> range of the first matching child, or of the
// whole document for the root's name. Unknown names raise
// InvalidOperation.
func (s *State) fromChild(L *lua.LState) int {
	const op = "from_child"
	if L.Get(1) == lua.LNil {
		return raiseKind(L, op, errkind.NullArgument, "child is nil")
	}
	pattern := L.CheckString(1)
	child := s.findChild(pattern)
	if child == nil && match.Match(s.provider.Root().Name, pattern) {
		child = s.provider.Root()
	}
	if child == nil {
		return raiseKind(L, op, errkind.InvalidOperation, "no child matches %q", pattern)
	}
	r, err := s.provider.RangeFromChild(child)
	if err != nil {
		return raise(L, err)
	}
	pushRange(L, r)
	return 1
}

// doc.children([pattern]) -> {{name, role, id}, ...}
func (s *State) children(L *lua.LState) int {
	pattern := L.OptString(1, "*")
	tbl := L.NewTable()
	for _, c := range s.el.Document().ChildSpans() {
		if match.Match(c.Element.Name, pattern) {
			tbl.Append(elementToLua(L, c.Element))
		}
	}
	L.Push(tbl)
	return 1
}

// doc.selection() -> {range, ...}
func (s *State) selection(L *lua.LState) int {
	pushRanges(L, s.provider.GetSelection())
	return 1
}

// doc.selection_mode() -> "none"|"single"|"multiple"
func (s *State) selectionMode(L *lua.LState) int {
	L.Push(lua.LString(s.provider.SupportedSelectionMode().String()))
	return 1
}

// doc.visible() -> {range, ...}
func (s *State) visible(L *lua.LState) int {
	pushRanges(L, s.provider.GetVisibleRanges())
	return 1
}

func (s *State) root(L *lua.LState) int {
	L.Push(elementToLua(L, s.provider.Root()))
	return 1
}

func (s *State) text(L *lua.LState) int {
	L.Push(lua.LString(s.el.Document().Text()))
	return 1
}

func (s *State) length(L *lua.LState) int {
	L.Push(lua.LNumber(s.el.Document().Len()))
	return 1
}

func (s *State) revision(L *lua.LState) int {
	L.Push(lua.LNumber(s.el.Document().Revision()))
	return 1
}

// doc.insert(offset, text) -> offset after the inserted text
func (s *State) insert(L *lua.LState) int {
	offset := L.CheckInt(1)
	end, err := s.el.Document().Insert(offset, L.CheckString(2))
	if err != nil {
		return raise(L, err)
	}
	s.log.Debug("insert at %d, revision %d", offset, s.el.Document().Revision())
	L.Push(lua.LNumber(end))
	return 1
}

// doc.delete(start, end)
func (s *State) delete(L *lua.LState) int {
	if err := s.el.Document().Delete(L.CheckInt(1), L.CheckInt(2)); err != nil {
		return raise(L, err)
	}
	return 0
}

// doc.replace(start, end, text) -> offset after the new text
func (s *State) replace(L *lua.LState) int {
	end, err := s.el.Document().Replace(L.CheckInt(1), L.CheckInt(2), L.CheckString(3))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LNumber(end))
	return 1
}

// doc.scroll_to(top_row) scrolls the default grid viewport.
func (s *State) scrollTo(L *lua.LState) int {
	g, ok := s.el.Grid()
	if !ok {
		return raiseKind(L, "scroll_to", errkind.UnsupportedOperation, "viewport is not a grid")
	}
	_, left := g.Scroll()
	g.ScrollTo(L.CheckInt(1), left)
	return 0
}
