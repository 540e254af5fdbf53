package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua table into L:
//
//	engine.log(msg)        writes msg to the game log at debug level
//	engine.random()        returns a number in [0, 1) from the game's dice
//	engine.chance(p)       returns true with probability p
//
// Precondition: L must belong to a Sandbox.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, key string) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug("lua", zap.String("script", key), zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetField(engine, "random", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.roller.Float64("script " + key)))
		return 1
	}))
	L.SetField(engine, "chance", L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		L.Push(lua.LBool(m.roller.Chance("script "+key, p)))
		return 1
	}))
	L.SetGlobal("engine", engine)
}
