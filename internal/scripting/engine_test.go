package scripting

import (
	"os"
	"path/filepath"
	"testing"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewEngineLoadOrder(t *testing.T) {
	dir := t.TempDir()
	// core/ loads before actions/, so helpers are visible to actions.
	writeScript(t, filepath.Join(dir, "core"), "helpers.lua", `
function double(n) return n * 2 end
`)
	writeScript(t, filepath.Join(dir, "actions"), "doors.lua", `
function open_door(entity_id, args, actor)
  opened = double(entity_id)
end
`)

	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	if !e.HasFunction("open_door") || !e.HasFunction("double") {
		t.Fatal("loaded functions not visible")
	}
	if e.HasFunction("close_door") {
		t.Error("undefined function reported as present")
	}

	if err := e.RunAction("open_door", 21, nil, ActorContext{}); err != nil {
		t.Fatalf("run action: %v", err)
	}
	if got := e.vm.GetGlobal("opened"); got != lua.LNumber(42) {
		t.Errorf("opened = %v, want 42", got)
	}
}

func TestRunActionArgsAndActor(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "probe.lua", `
function probe(entity_id, args, actor)
  seen_target = entity_id
  seen_arg = args[2]
  seen_name = actor.name
  seen_level = actor.user_level
end
`)
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	actor := ActorContext{EntityID: 7, Name: "Misaki", UserLevel: 2, ZoneID: 1}
	if err := e.RunAction("probe", 500, []int32{10, 20}, actor); err != nil {
		t.Fatalf("run action: %v", err)
	}

	if got := e.vm.GetGlobal("seen_target"); got != lua.LNumber(500) {
		t.Errorf("target = %v, want 500", got)
	}
	if got := e.vm.GetGlobal("seen_arg"); got != lua.LNumber(20) {
		t.Errorf("args[2] = %v, want 20", got)
	}
	if got := e.vm.GetGlobal("seen_name"); got != lua.LString("Misaki") {
		t.Errorf("actor name = %v, want Misaki", got)
	}
	if got := e.vm.GetGlobal("seen_level"); got != lua.LNumber(2) {
		t.Errorf("actor level = %v, want 2", got)
	}
}

func TestRunActionErrors(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bad.lua", `
function explode() error("scripted failure") end
`)
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	if err := e.RunAction("missing", 1, nil, ActorContext{}); err == nil {
		t.Error("calling an undefined function must error")
	}
	if err := e.RunAction("explode", 1, nil, ActorContext{}); err == nil {
		t.Error("lua runtime error must surface")
	}
}

func TestNewEngineBadScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.lua", `function unterminated(`)

	if _, err := NewEngine(dir, zap.NewNop()); err == nil {
		t.Error("syntax error must fail engine construction")
	}
}

func TestNewEngineMissingDirsAreOptional(t *testing.T) {
	e, err := NewEngine(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("empty script dir rejected: %v", err)
	}
	e.Close()
}
