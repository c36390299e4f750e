package handler

import (
	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/world"
)

// HandlePlasmaStart claims a plasma point for the client. Runs inline on
// the dispatch goroutine: the point table is its own synchronization
// domain and claiming must be first-come-first-served across sessions.
//
// Payload: s32 plasma entity ID, s8 point ID. Exactly 5 bytes.
func (d *Deps) HandlePlasmaStart(sess any, r *packet.Reader) bool {
	if r.PayloadSize() != 5 {
		return false
	}
	st, _ := d.client(sess)
	if st == nil {
		return false
	}
	entityID := r.ReadS32()
	pointID := r.ReadS8()

	var status int32 = -1
	if pointID >= 0 {
		if plasma := d.plasmaInRange(st, entityID); plasma != nil {
			if plasma.PickPoint(uint8(pointID), st.WorldCID) {
				status = 0
			}
		}
	}

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PLASMA_START)
	w.WriteS32(entityID)
	w.WriteS8(pointID)
	w.WriteS32(status)
	st.Conn.Send(w.Bytes())
	return true
}

// plasmaInRange resolves a plasma entity the client may interact with.
// Privileged users skip the distance check.
func (d *Deps) plasmaInRange(st *world.ClientState, entityID int32) *world.PlasmaState {
	z := st.Zone()
	if z == nil || st.Character == nil {
		return nil
	}
	ent := z.GetEntity(entityID)
	if ent == nil || ent.Kind != world.EntityPlasma {
		return nil
	}
	if st.Character.Entity.UserLevel <= 0 {
		x, y := ent.Position()
		if !st.Character.CanInteract(x, y, d.Cfg.Game.InteractDistance) {
			return nil
		}
	}
	return ent.Plasma
}
