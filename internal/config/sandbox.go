package config

import (
	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are removed from every config VM. Configs are declarative:
// they may compute values but not touch the system or load other code.
var blockedGlobals = []string{
	"os", "io", "debug",
	"require", "module", "dofile", "loadfile", "load", "loadstring",
	"collectgarbage", "getfenv", "setfenv",
}

// sandboxLuaVM strips the globals that could run commands, reach the
// filesystem or escape the sandbox. string, table, math and the basic
// functions (type, tostring, pairs, ...) stay available.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a new Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: 256,
	})
	sandboxLuaVM(L)
	return L
}
