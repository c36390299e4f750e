package system

import (
	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/world"
)

// SendItemBoxData sends the full contents of an item box to the client.
// Sent after any server-driven change to box contents so the client
// view never drifts from ground truth.
func (m *Manager) SendItemBoxData(st *world.ClientState, box *world.ItemBox) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ITEM_BOX)
	w.WriteS8(box.BoxID)
	w.WriteS64(st.ObjectHandle(box.UID))

	var count int32
	for _, uid := range box.Slots {
		if m.World.Objects.Item(uid) != nil {
			count++
		}
	}
	w.WriteS32(count)

	for slot, uid := range box.Slots {
		item := m.World.Objects.Item(uid)
		if item == nil {
			continue
		}
		w.WriteS8(int8(slot))
		w.WriteS64(st.ObjectHandle(item.UID))
		w.WriteU32(item.Type)
		w.WriteU16(item.StackSize)
		w.WriteS64(item.RentalExpiry)
	}

	st.Conn.Send(w.Bytes())
}

// SendDemonBoxData sends the full contents of a demon box to the client.
func (m *Manager) SendDemonBoxData(st *world.ClientState, box *world.DemonBox) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_DEMON_BOX)
	w.WriteS8(box.BoxID)

	var count int32
	for _, uid := range box.Slots {
		if m.World.Objects.Demon(uid) != nil {
			count++
		}
	}
	w.WriteS32(count)

	for slot, uid := range box.Slots {
		demon := m.World.Objects.Demon(uid)
		if demon == nil {
			continue
		}
		w.WriteS8(int8(slot))
		w.WriteS64(st.ObjectHandle(demon.UID))
		w.WriteU32(demon.Type)
		if demon.Familiar {
			w.WriteU8(1)
		} else {
			w.WriteU8(0)
		}
		w.WriteU8(uint8(len(demon.MitamaReunions)))
		for _, b := range demon.MitamaReunions {
			w.WriteU8(b)
		}
	}

	st.Conn.Send(w.Bytes())
}
