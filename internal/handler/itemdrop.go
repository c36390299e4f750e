package handler

import (
	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/persist"
	"github.com/amala/channel/internal/world"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandleItemDrop discards an item from the client's inventory. The
// destructive work runs on the work queue; a request arriving while the
// client is mid-exchange is tampering and kills the connection, since
// the stock client cannot send a drop in that state.
//
// Payload: s64 item handle.
func (d *Deps) HandleItemDrop(sess any, r *packet.Reader) bool {
	if r.PayloadSize() != 8 {
		return false
	}
	st, _ := d.client(sess)
	if st == nil {
		return false
	}
	handle := r.ReadS64()

	d.Queue.Submit(func() {
		if !st.Alive() {
			return
		}
		if st.Exchange() != nil {
			st.Conn.Kill()
			return
		}
		d.dropItem(st, handle)
	})
	return true
}

func (d *Deps) dropItem(st *world.ClientState, handle int64) {
	item := d.World.Objects.Item(st.ObjectUUID(handle))
	box := d.Mgr.Inventory(st)

	ok := item != nil && box != nil && item.BoxUID == box.UID
	if ok {
		def := d.Defs.Items.Get(item.Type)
		ok = def != nil && def.Discardable()
	}
	if !ok {
		sendErrorItem(st, packet.C_OPCODE_ITEM_DROP)
		return
	}

	cs := persist.NewChangeSet(st.AccountUID)
	if d.Mgr.UnequipItem(st, item) {
		cs.Update(st.Character.Entity)
	}

	if slot := box.SlotOf(item.UID); slot >= 0 {
		box.Slots[slot] = uuid.Nil
	}
	d.World.Objects.Unregister(item.UID)

	cs.Update(box)
	cs.Delete(item)
	d.Store.QueueChangeSet(cs)

	d.Mgr.SendItemBoxData(st, box)
	d.Log.Debug("item dropped",
		zap.Int32("cid", st.WorldCID),
		zap.String("item", item.UID.String()))
}

// sendErrorItem reports an in-game item operation failure: the failed
// opcode is echoed back with a negative status.
func sendErrorItem(st *world.ClientState, opcode uint16) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ERROR_ITEM)
	w.WriteS32(int32(opcode))
	w.WriteS32(-1)
	w.WriteS8(0)
	w.WriteS8(0)
	st.Conn.Send(w.Bytes())
}
