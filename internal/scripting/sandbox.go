// Package scripting runs per-scene Lua scripts in sandboxed GopherLua states. It
// knows nothing about the fishing state machine: the game passes plain values in
// and reads numbers back.
package scripting

import (
	"context"
	"fmt"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget of one script run when no limit
// is configured.
const DefaultInstructionLimit = 100_000

// unsafeGlobals are removed after the base library is opened.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"}

// opcodeBudget is a context that cancels itself once Done has been polled more
// than its budget allows. The GopherLua main loop polls Done once per opcode.
type opcodeBudget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *opcodeBudget) Done() <-chan struct{} {
	if b.left.Add(-1) < 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// Sandbox is a GopherLua state limited to the base, table, string and math
// libraries, where every run gets a fresh opcode budget.
//
// A Sandbox is not safe for concurrent use.
type Sandbox struct {
	L      *lua.LState
	limit  int
	cancel context.CancelFunc
}

// NewSandbox creates a Sandbox.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: the caller must Close the Sandbox.
func NewSandbox(limit int) *Sandbox {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return &Sandbox{L: L, limit: limit}
}

// Limit returns the opcode budget of one run.
func (s *Sandbox) Limit() int {
	return s.limit
}

// refill replaces the budget of the previous run.
func (s *Sandbox) refill() {
	if s.cancel != nil {
		s.cancel()
	}
	base, cancel := context.WithCancel(context.Background())
	b := &opcodeBudget{Context: base, cancel: cancel}
	b.left.Store(int64(s.limit))
	s.cancel = cancel
	s.L.SetContext(b)
}

// RunString executes a chunk of Lua source.
func (s *Sandbox) RunString(src string) error {
	s.refill()
	return s.L.DoString(src)
}

// RunFile executes the Lua file at path.
func (s *Sandbox) RunFile(path string) error {
	s.refill()
	if err := s.L.DoFile(path); err != nil {
		return fmt.Errorf("running %s: %w", path, err)
	}
	return nil
}

// Call invokes the global function name with args.
//
// Postcondition: returns the function's first result; LNil with a nil error when
// name is not a function.
func (s *Sandbox) Call(name string, args ...lua.LValue) (lua.LValue, error) {
	fn, ok := s.L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return lua.LNil, nil
	}
	s.refill()
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		return lua.LNil, err
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

// Close releases the Lua state. Safe to call multiple times.
func (s *Sandbox) Close() {
	if s.L == nil {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.L.Close()
	s.L = nil
}
