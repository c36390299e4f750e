package handler

import (
	"testing"

	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/world"
)

func plasmaReq(entityID int32, pointID int8) *packet.Reader {
	return req(packet.C_OPCODE_PLASMA_START, func(w *packet.Writer) {
		w.WriteS32(entityID)
		w.WriteS8(pointID)
	})
}

func plasmaReply(t *testing.T, conn *fakeConn) (entityID int32, pointID int8, status int32) {
	t.Helper()
	r := conn.last(t, packet.S_OPCODE_PLASMA_START)
	return r.ReadS32(), r.ReadS8(), r.ReadS32()
}

func TestPlasmaStartFirstComerWins(t *testing.T) {
	f := newFixture(t)
	a, ca, _ := f.addClient(t, 1)
	_, cb, _ := f.addClient(t, 2)

	plasma := world.NewPlasmaState(500, 10, 10, []uint8{0, 1, 2})
	a.Zone().AddPlasma(plasma)

	if !f.deps.HandlePlasmaStart(ca, plasmaReq(500, 1)) {
		t.Fatal("well-formed claim rejected")
	}
	if _, _, status := plasmaReply(t, ca); status != 0 {
		t.Fatalf("first claim status = %d, want 0", status)
	}

	f.deps.HandlePlasmaStart(cb, plasmaReq(500, 1))
	ent, pt, status := plasmaReply(t, cb)
	if status != -1 {
		t.Errorf("second claim status = %d, want -1", status)
	}
	if ent != 500 || pt != 1 {
		t.Errorf("reply echoed %d/%d, want 500/1", ent, pt)
	}

	// The loser can still claim a different point.
	f.deps.HandlePlasmaStart(cb, plasmaReq(500, 2))
	if _, _, status := plasmaReply(t, cb); status != 0 {
		t.Errorf("claim on free point status = %d, want 0", status)
	}
}

func TestPlasmaStartRejections(t *testing.T) {
	f := newFixture(t)
	st, conn, _ := f.addClient(t, 1)
	plasma := world.NewPlasmaState(500, 10, 10, []uint8{0})
	st.Zone().AddPlasma(plasma)

	tests := []struct {
		name     string
		entityID int32
		pointID  int8
	}{
		{"unknown entity", 999, 0},
		{"unknown point", 500, 7},
		{"negative point", 500, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !f.deps.HandlePlasmaStart(conn, plasmaReq(tt.entityID, tt.pointID)) {
				t.Fatal("in-game failure must not drop the connection")
			}
			if _, _, status := plasmaReply(t, conn); status != -1 {
				t.Errorf("status = %d, want -1", status)
			}
		})
	}
}

func TestPlasmaStartOutOfRange(t *testing.T) {
	f := newFixture(t)
	st, conn, _ := f.addClient(t, 1)
	far := world.NewPlasmaState(500, 9999, 9999, []uint8{0})
	st.Zone().AddPlasma(far)

	f.deps.HandlePlasmaStart(conn, plasmaReq(500, 0))
	if _, _, status := plasmaReply(t, conn); status != -1 {
		t.Errorf("out-of-range claim status = %d, want -1", status)
	}
	if far.Point(0).OwnerCID != 0 {
		t.Error("out-of-range claim still took the point")
	}
}

func TestPlasmaStartPrivilegedSkipsDistance(t *testing.T) {
	f := newFixture(t)
	st, conn, _ := f.addClient(t, 1)
	st.Character.Entity.UserLevel = 1
	far := world.NewPlasmaState(500, 9999, 9999, []uint8{0})
	st.Zone().AddPlasma(far)

	f.deps.HandlePlasmaStart(conn, plasmaReq(500, 0))
	if _, _, status := plasmaReply(t, conn); status != 0 {
		t.Errorf("privileged claim status = %d, want 0", status)
	}
}

func TestPlasmaStartWrongSizeIsViolation(t *testing.T) {
	f := newFixture(t)
	_, conn, _ := f.addClient(t, 1)

	if f.deps.HandlePlasmaStart(conn, req(packet.C_OPCODE_PLASMA_START, func(w *packet.Writer) {
		w.WriteS32(500)
	})) {
		t.Error("payload missing the point ID accepted")
	}
}
