package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/game/dice"
)

// GlobalScript is the file stem of the shared script. CallHook falls back to its VM
// when a scene has no script of its own.
const GlobalScript = "global"

// HookBiteModifier is the global function consulted on every bite check.
const HookBiteModifier = "bite_modifier"

// MaxBiteModifier caps the value a bite_modifier hook may return.
const MaxBiteModifier = 5.0

// BiteInfo is the snapshot passed to bite_modifier.
type BiteInfo struct {
	Scene   string
	Weather string
	Period  string
	Season  string
	Hour    int
}

// vm guards one Sandbox; a Lua state is single-threaded.
type vm struct {
	mu sync.Mutex
	sb *Sandbox
}

// Manager owns one sandboxed LState per scene and exposes hook dispatch.
// It is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scripts loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadDir loads every *.lua file of scriptDir into its own VM, keyed by file stem:
// <sceneID>.lua serves that scene, global.lua is the shared fallback.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: returns the first load error; VMs loaded before it stay registered.
func (m *Manager) LoadDir(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		key := strings.TrimSuffix(name, ".lua")
		if err := m.LoadScript(key, filepath.Join(scriptDir, name), instLimit); err != nil {
			return err
		}
	}
	m.logger.Info("scripts loaded", zap.String("dir", scriptDir), zap.Int("count", len(files)))
	return nil
}

// LoadScript creates a sandboxed VM for key and executes the file at path in it,
// replacing any VM previously registered under key.
//
// Precondition: key must be non-empty.
// Postcondition: the VM is registered; returns error on Lua load failure.
func (m *Manager) LoadScript(key, path string, instLimit int) error {
	sb := NewSandbox(instLimit)
	m.RegisterModules(sb.L, key)

	if err := sb.RunFile(path); err != nil {
		sb.Close()
		return fmt.Errorf("scripting: loading %q: %w", key, err)
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.close()
	}
	m.vms[key] = &vm{sb: sb}
	m.mu.Unlock()
	return nil
}

// Loaded reports whether a VM is registered for key.
func (m *Manager) Loaded(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[key]
	return ok
}

// CallHook calls the named Lua global function in key's VM. If key has no VM,
// the global VM is tried as a fallback. Returns (LNil, nil) if the hook is not
// defined or no VM exists. Lua runtime errors are logged at Warn level and never
// propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(key, hook string, args ...lua.LValue) (lua.LValue, error) {
	v := m.lookup(key)
	if v == nil {
		m.logger.Debug("scripting: no VM for scene",
			zap.String("scene", key),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return m.call(v, key, hook, func(*lua.LState) []lua.LValue { return args }), nil
}

// BiteModifier asks the scene's bite_modifier hook for a bite-chance factor.
//
// Postcondition: returns a value in [0, MaxBiteModifier]; 1 when no hook is defined,
// the hook fails, or it returns a non-number.
func (m *Manager) BiteModifier(info BiteInfo) float64 {
	v := m.lookup(info.Scene)
	if v == nil {
		return 1
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	ret := m.call(v, info.Scene, HookBiteModifier, func(L *lua.LState) []lua.LValue {
		t := L.NewTable()
		t.RawSetString("scene", lua.LString(info.Scene))
		t.RawSetString("weather", lua.LString(info.Weather))
		t.RawSetString("period", lua.LString(info.Period))
		t.RawSetString("season", lua.LString(info.Season))
		t.RawSetString("hour", lua.LNumber(info.Hour))
		return []lua.LValue{t}
	})
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 1
	}
	return max(0, min(MaxBiteModifier, float64(n)))
}

// lookup returns key's VM, the global VM, or nil.
func (m *Manager) lookup(key string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[key]; ok {
		return v
	}
	return m.vms[GlobalScript]
}

// call runs hook in v, building its arguments in v's state.
//
// Precondition: v.mu is held.
func (m *Manager) call(v *vm, key, hook string, args func(*lua.LState) []lua.LValue) lua.LValue {
	if v.sb == nil {
		return lua.LNil
	}
	ret, err := v.sb.Call(hook, args(v.sb.L)...)
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scene", key),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	return ret
}

// Close releases every VM.
//
// Postcondition: no VMs remain; CallHook returns LNil afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, v := range m.vms {
		v.close()
		delete(m.vms, key)
	}
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sb == nil {
		return
	}
	v.sb.Close()
	v.sb = nil
}
