package handler

import (
	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/persist"
	"github.com/amala/channel/internal/world"
	"go.uber.org/zap"
)

// HandleMitamaReunion consumes a mitama demon from the COMP to reinforce
// the client's partner demon. Runs on the work queue.
//
// Payload: s64 mitama demon handle, s8 reunion index. Exactly 9 bytes;
// anything else is a protocol violation.
func (d *Deps) HandleMitamaReunion(sess any, r *packet.Reader) bool {
	if r.PayloadSize() != 9 {
		return false
	}
	st, _ := d.client(sess)
	if st == nil {
		return false
	}
	handle := r.ReadS64()
	reunionIdx := r.ReadS8()

	d.Queue.Submit(func() {
		if !st.Alive() {
			return
		}
		d.mitamaReunion(st, handle, reunionIdx)
	})
	return true
}

func (d *Deps) mitamaReunion(st *world.ClientState, handle int64, reunionIdx int8) {
	var target *world.Demon
	if st.Demon != nil {
		target = st.Demon.Entity
	}
	mitama := d.World.Objects.Demon(st.ObjectUUID(handle))

	var mitamaIdx uint8
	ok := target != nil && mitama != nil && target.UID != mitama.UID &&
		reunionIdx >= 0 && int(reunionIdx) < len(target.Reunion)
	if ok {
		// Both sides must be mitama demons: the consumed one sets the
		// bonus band, the target must be able to hold the reunion.
		targetDef := d.Defs.Devils.Get(target.Type)
		if targetDef == nil || !targetDef.Mitama {
			ok = false
		}
	}
	if ok {
		def := d.Defs.Devils.Get(mitama.Type)
		if def == nil || !def.Mitama {
			ok = false
		} else {
			mitamaIdx, ok = d.Defs.Mitama.Index(def.BaseDemonID)
		}
	}

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_MITAMA_REUNION)
	if !ok {
		w.WriteS8(-1)
		w.WriteS8(reunionIdx)
		w.WriteS8(0)
		w.WriteS8(0)
		st.Conn.Send(w.Bytes())
		return
	}

	bonusID := d.Mgr.DoMitamaReunion(target, mitamaIdx)
	compBox := d.Mgr.DeleteDemon(mitama)

	cs := persist.NewChangeSet(st.AccountUID)
	cs.Update(target)
	cs.Delete(mitama)
	if compBox != nil {
		cs.Update(compBox)
	}
	d.Store.QueueChangeSet(cs)

	w.WriteS8(0)
	w.WriteS8(reunionIdx)
	w.WriteU8(bonusID)
	w.WriteS8(0)
	st.Conn.Send(w.Bytes())

	if compBox != nil {
		d.Mgr.SendDemonBoxData(st, compBox)
	}

	d.Log.Debug("mitama reunion",
		zap.Int32("cid", st.WorldCID),
		zap.Uint8("bonus", bonusID))
}
