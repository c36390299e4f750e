package handler

import (
	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/scripting"
	"go.uber.org/zap"
)

// HandleObjectInteraction triggers the action list of an NPC or server
// object. Existence, range and privilege are checked inline; the script
// dispatch runs on the work queue. An entity with no actions only logs —
// the client may legitimately poke scenery.
//
// Payload: s32 entity ID. Exactly 4 bytes.
func (d *Deps) HandleObjectInteraction(sess any, r *packet.Reader) bool {
	if r.PayloadSize() != 4 {
		return false
	}
	st, _ := d.client(sess)
	if st == nil {
		return false
	}
	entityID := r.ReadS32()

	z := st.Zone()
	if z == nil || st.Character == nil {
		return true
	}
	ent := z.GetEntity(entityID)
	if ent == nil {
		d.Log.Debug("interaction with unknown entity",
			zap.Int32("cid", st.WorldCID),
			zap.Int32("entity", entityID))
		return true
	}
	if st.Character.Entity.UserLevel <= 0 {
		x, y := ent.Position()
		if !st.Character.CanInteract(x, y, d.Cfg.Game.InteractDistance) {
			d.Log.Debug("interaction out of range",
				zap.Int32("cid", st.WorldCID),
				zap.Int32("entity", entityID),
				zap.Float64("distance", st.Character.Distance(x, y)))
			return true
		}
	}

	actions := ent.ActionList()
	if len(actions) == 0 {
		d.Log.Debug("interaction with actionless entity",
			zap.Int32("cid", st.WorldCID),
			zap.Int32("entity", entityID))
		return true
	}

	actor := scripting.ActorContext{
		EntityID:  st.Character.EntityID,
		Name:      st.Character.Entity.Name,
		UserLevel: st.Character.Entity.UserLevel,
		ZoneID:    z.ID,
		X:         st.Character.X,
		Y:         st.Character.Y,
	}
	d.Queue.Submit(func() {
		if !st.Alive() {
			return
		}
		for _, a := range actions {
			if err := d.Script.RunAction(a.Function, entityID, a.Args, actor); err != nil {
				d.Log.Error("object action failed",
					zap.Int32("entity", entityID),
					zap.String("function", a.Function),
					zap.Error(err))
				return
			}
		}
	})
	return true
}
