package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textnav/internal/engine"
	"github.com/dshills/textnav/internal/engine/errkind"
	"github.com/dshills/textnav/internal/engine/textrange"
	"github.com/dshills/textnav/internal/logging"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// Errors returned by State.
var (
	ErrStateClosed = errors.New("lua state is closed")
	ErrNoText      = errors.New("element does not support text ranges")
)

// Result is one value a script passed to emit.
type Result struct {
	Key   string
	Value any
}

// State is a Lua interpreter bound to one text element.
//
// gopher-lua's LState is not goroutine-safe; State serializes runs with a
// mutex.
type State struct {
	L *lua.LState

	mu       sync.Mutex
	el       *engine.Element
	provider *textrange.Provider
	timeout  time.Duration
	out      io.Writer
	log      *logging.Logger
	results  []Result
	closed   bool
}

// Option configures a State.
type Option func(*State)

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		s.timeout = d
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		s.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) {
		s.log = l.WithComponent("script")
	}
}

// New creates a sandboxed state exposing el as the global doc.
func New(el *engine.Element, opts ...Option) (*State, error) {
	p, ok := el.Supports(engine.CapabilityText)
	if !ok {
		return nil, ErrNoText
	}
	s := &State{
		el:       el,
		provider: p,
		timeout:  DefaultTimeout,
		out:      io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	s.L = L

	L.SetGlobal("print", L.NewFunction(s.print))
	L.SetGlobal("emit", L.NewFunction(s.emit))
	registerRangeType(L)
	registerDocModule(L, s)
	return s, nil
}

// openSafeLibraries opens the libraries scripts may use. io, os, debug
// and package stay closed, and the base functions that read files are
// removed.
func openSafeLibraries(L *lua.LState) {
	for _, pair := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(pair.fn))
		L.Push(lua.LString(pair.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoString runs code.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func() error { return s.L.DoString(code) })
}

// DoFile runs the script at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, func() error { return s.L.DoFile(path) })
}

func (s *State) run(ctx context.Context, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	start := time.Now()
	defer func() {
		s.log.Debug("script finished in %v: %v", time.Since(start), err)
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	if err := fn(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("script interrupted: %w", ctxErr)
		}
		return fromLua(err)
	}
	return nil
}

// Results returns the values emitted so far, in order.
func (s *State) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// Close releases the interpreter.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

// print(...) writes its arguments, tab separated, to the output.
func (s *State) print(L *lua.LState) int {
	top := L.GetTop()
	for i := 1; i <= top; i++ {
		if i > 1 {
			fmt.Fprint(s.out, "\t")
		}
		fmt.Fprint(s.out, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(s.out)
	return 0
}

// emit(key, value) records a result for the host.
func (s *State) emit(L *lua.LState) int {
	key := L.CheckString(1)
	s.results = append(s.results, Result{Key: key, Value: toGo(L.Get(2))})
	return 0
}

// raise turns an engine error into a Lua error value. Scripts can catch
// it with pcall and read its kind and message fields.
func raise(L *lua.LState, err error) int {
	kind := errkind.Of(err)
	if kind == errkind.Unknown {
		kind = errkind.InvalidOperation
	}
	tbl := L.NewTable()
	tbl.RawSetString("kind", lua.LString(kind.String()))
	tbl.RawSetString("message", lua.LString(err.Error()))
	mt := L.NewTable()
	mt.RawSetString("__tostring", L.NewFunction(func(L *lua.LState) int {
		t := L.CheckTable(1)
		L.Push(t.RawGetString("message"))
		return 1
	}))
	L.SetMetatable(tbl, mt)
	L.Error(tbl, 1)
	return 0
}

// raiseKind raises an engine error of kind for op.
func raiseKind(L *lua.LState, op string, kind errkind.Kind, format string, args ...any) int {
	return raise(L, errkind.E(op, kind, format, args...))
}

var kindNames = map[string]errkind.Kind{
	errkind.NullArgument.String():         errkind.NullArgument,
	errkind.InvalidArgument.String():      errkind.InvalidArgument,
	errkind.OutOfRange.String():           errkind.OutOfRange,
	errkind.InvalidOperation.String():     errkind.InvalidOperation,
	errkind.UnsupportedOperation.String(): errkind.UnsupportedOperation,
}

// fromLua converts an error escaping a script back to a Go error,
// restoring the engine error kind when the script did not catch one.
func fromLua(err error) error {
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return err
	}
	tbl, ok := apiErr.Object.(*lua.LTable)
	if !ok {
		return err
	}
	kind, ok := kindNames[tbl.RawGetString("kind").String()]
	if !ok {
		return err
	}
	return &errkind.Error{Op: "script", Kind: kind, Msg: tbl.RawGetString("message").String()}
}
