package world

import (
	"testing"

	"github.com/google/uuid"
)

type nopConn struct{ id uint64 }

func (c *nopConn) SessionID() uint64 { return c.id }
func (c *nopConn) Send([]byte)       {}
func (c *nopConn) Close()            {}
func (c *nopConn) Kill()             {}

func TestObjectHandlesAreStable(t *testing.T) {
	st := NewClientState(&nopConn{id: 1}, uuid.New(), 10)
	uid := uuid.New()

	h1 := st.ObjectHandle(uid)
	h2 := st.ObjectHandle(uid)
	if h1 != h2 {
		t.Fatalf("handle changed between lookups: %d vs %d", h1, h2)
	}
	if got := st.ObjectUUID(h1); got != uid {
		t.Fatalf("ObjectUUID(%d) = %s, want %s", h1, got, uid)
	}
}

func TestObjectUUIDUnknownHandle(t *testing.T) {
	st := NewClientState(&nopConn{id: 1}, uuid.New(), 10)
	if got := st.ObjectUUID(999); got != uuid.Nil {
		t.Fatalf("unknown handle resolved to %s, want zero UUID", got)
	}
}

func TestStateClientLookup(t *testing.T) {
	ws := NewState()
	st := NewClientState(&nopConn{id: 7}, uuid.New(), 42)
	ws.AddClient(st)

	if ws.ClientBySession(7) != st {
		t.Error("session lookup failed")
	}
	if ws.ClientByCID(42) != st {
		t.Error("cid lookup failed")
	}
	if ws.ClientCount() != 1 {
		t.Errorf("count = %d, want 1", ws.ClientCount())
	}

	ws.RemoveClient(st)
	if ws.ClientBySession(7) != nil || ws.ClientByCID(42) != nil {
		t.Error("client still resolvable after removal")
	}
	ws.RemoveClient(st) // idempotent
}

func TestPlasmaPickPointFirstWins(t *testing.T) {
	p := NewPlasmaState(1, 0, 0, []uint8{0, 1})
	if !p.PickPoint(0, 100) {
		t.Fatal("free point rejected")
	}
	if p.PickPoint(0, 200) {
		t.Error("claimed point handed to second picker")
	}
	if p.PickPoint(0, 100) {
		t.Error("re-picking an owned point should fail")
	}
	if p.PickPoint(9, 100) {
		t.Error("unknown point accepted")
	}

	p.ReleasePoint(0, 200) // not the owner, no-op
	if p.Point(0).OwnerCID != 100 {
		t.Error("release by non-owner changed ownership")
	}
	p.ReleasePoint(0, 100)
	if !p.PickPoint(0, 200) {
		t.Error("released point not claimable")
	}
}
