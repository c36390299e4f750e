package handler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/scripting"
	"github.com/amala/channel/internal/world"
	"go.uber.org/zap"
)

func testEngine(t *testing.T, script string) *scripting.Engine {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "actions.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	eng, err := scripting.NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(eng.Close)
	return eng
}

func interactReq(entityID int32) *packet.Reader {
	return req(packet.C_OPCODE_OBJECT_INTERACTION, func(w *packet.Writer) {
		w.WriteS32(entityID)
	})
}

func TestObjectInteractionRunsActions(t *testing.T) {
	f := newFixture(t)
	st, conn, _ := f.addClient(t, 1)
	f.deps.Script = testEngine(t, `
function open_door(entity_id, args, actor)
  if args[1] ~= 5 then error("bad arg") end
  if actor.name ~= "tester" then error("bad actor") end
end
`)

	obj := &world.ObjectState{
		ActiveEntityState: world.ActiveEntityState{EntityID: world.NextEntityID(), X: 10, Y: 10},
		Actions:           []world.Action{{Function: "open_door", Args: []int32{5}}},
	}
	st.Zone().AddObject(obj)

	if !f.deps.HandleObjectInteraction(conn, interactReq(obj.EntityID)) {
		t.Fatal("valid interaction rejected")
	}
	if conn.closed || conn.killed {
		t.Error("interaction dropped the connection")
	}
}

func TestObjectInteractionUnknownEntity(t *testing.T) {
	f := newFixture(t)
	_, conn, _ := f.addClient(t, 1)

	if !f.deps.HandleObjectInteraction(conn, interactReq(424242)) {
		t.Error("poking a missing entity must not drop the connection")
	}
}

func TestObjectInteractionOutOfRange(t *testing.T) {
	f := newFixture(t)
	st, conn, _ := f.addClient(t, 1)

	// Script stays nil: the inline queue runs submitted work immediately,
	// so an out-of-range interaction that wrongly reached dispatch would
	// panic here.
	obj := &world.ObjectState{
		ActiveEntityState: world.ActiveEntityState{EntityID: world.NextEntityID(), X: 9999, Y: 9999},
		Actions:           []world.Action{{Function: "boom"}},
	}
	st.Zone().AddObject(obj)

	if !f.deps.HandleObjectInteraction(conn, interactReq(obj.EntityID)) {
		t.Error("out-of-range interaction must not drop the connection")
	}
}

func TestObjectInteractionWrongSizeIsViolation(t *testing.T) {
	f := newFixture(t)
	_, conn, _ := f.addClient(t, 1)

	if f.deps.HandleObjectInteraction(conn, req(packet.C_OPCODE_OBJECT_INTERACTION, func(w *packet.Writer) {
		w.WriteS8(1)
	})) {
		t.Error("undersized payload accepted")
	}
}
