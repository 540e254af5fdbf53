package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/lurefish/internal/scripting"
)

func newSandbox(t *testing.T, limit int) *scripting.Sandbox {
	t.Helper()
	s := scripting.NewSandbox(limit)
	t.Cleanup(s.Close)
	return s
}

func TestNewSandbox_UnsafeGlobalsRemoved(t *testing.T) {
	s := newSandbox(t, 0)
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"} {
		assert.Equal(t, lua.LNil, s.L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandbox_SafeLibsAvailable(t *testing.T) {
	s := newSandbox(t, 0)
	assert.Equal(t, scripting.DefaultInstructionLimit, s.Limit())
	assert.NoError(t, s.RunString(`
		assert(math.sqrt(4) == 2.0, "math.sqrt failed")
		assert(string.upper("trout") == "TROUT", "string.upper failed")
		local t = {}
		table.insert(t, 1)
		assert(#t == 1, "table.insert failed")
	`))
}

func TestSandbox_InstructionLimit(t *testing.T) {
	s := newSandbox(t, 10)
	assert.Error(t, s.RunString(`while true do end`))
}

func TestSandbox_EachRunGetsFreshBudget(t *testing.T) {
	s := newSandbox(t, 400)
	require.NoError(t, s.RunString(`function sum() local n = 0 for i = 1, 60 do n = n + i end return n end`))
	// Each call fits the budget on its own; together they would not.
	for i := 0; i < 5; i++ {
		ret, err := s.Call("sum")
		require.NoError(t, err)
		assert.Equal(t, lua.LNumber(1830), ret)
	}
}

func TestSandbox_CallUndefined(t *testing.T) {
	s := newSandbox(t, 0)
	require.NoError(t, s.RunString(`not_a_function = 3`))
	for _, name := range []string{"missing", "not_a_function"} {
		ret, err := s.Call(name)
		require.NoError(t, err)
		assert.Equal(t, lua.LNil, ret)
	}
}

func TestSandbox_CallRuntimeError(t *testing.T) {
	s := newSandbox(t, 0)
	require.NoError(t, s.RunString(`function boom() error("snag") end`))
	_, err := s.Call("boom")
	assert.ErrorContains(t, err, "snag")
}

func TestSandbox_RunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lake.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function depth() return 12 end`), 0o644))
	s := newSandbox(t, 0)
	require.NoError(t, s.RunFile(path))
	ret, err := s.Call("depth")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(12), ret)

	assert.ErrorContains(t, s.RunFile(filepath.Join(t.TempDir(), "river.lua")), "river.lua")
}

func TestSandbox_CloseTwice(t *testing.T) {
	s := scripting.NewSandbox(0)
	s.Close()
	assert.NotPanics(t, s.Close)
}

func TestProperty_InstructionLimitAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(t, "limit")
		s := scripting.NewSandbox(limit)
		defer s.Close()
		if err := s.RunString(`while true do end`); err == nil {
			t.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
