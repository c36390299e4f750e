package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for server object actions. Action
// dispatch may come from any worker goroutine, so calls into the VM are
// serialized by a mutex.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory: shared helpers from core/, then object action scripts from
// actions/, then any .lua files in the root.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "actions", ""} {
		p := scriptsDir
		if sub != "" {
			p = filepath.Join(scriptsDir, sub)
		}
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", filepath.Base(p), err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// ActorContext identifies who triggered an object action and where.
type ActorContext struct {
	EntityID  int32
	Name      string
	UserLevel int32
	ZoneID    uint32
	X, Y      float64
}

// HasFunction reports whether a global Lua function with the given name
// is defined.
func (e *Engine) HasFunction(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vm.GetGlobal(name) != lua.LNil
}

// RunAction calls the named global action function with the target
// entity ID, the action's argument list, and an actor context table.
func (e *Engine) RunAction(fn string, targetID int32, args []int32, actor ActorContext) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.vm.GetGlobal(fn)
	if f == lua.LNil {
		return fmt.Errorf("lua function %s not found", fn)
	}

	argTbl := e.vm.NewTable()
	for i, a := range args {
		argTbl.RawSetInt(i+1, lua.LNumber(a))
	}

	actorTbl := e.vm.NewTable()
	actorTbl.RawSetString("entity_id", lua.LNumber(actor.EntityID))
	actorTbl.RawSetString("name", lua.LString(actor.Name))
	actorTbl.RawSetString("user_level", lua.LNumber(actor.UserLevel))
	actorTbl.RawSetString("zone_id", lua.LNumber(actor.ZoneID))
	actorTbl.RawSetString("x", lua.LNumber(actor.X))
	actorTbl.RawSetString("y", lua.LNumber(actor.Y))

	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(targetID), argTbl, actorTbl); err != nil {
		return fmt.Errorf("lua %s: %w", fn, err)
	}
	return nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
