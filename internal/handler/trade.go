package handler

import (
	"context"
	"sort"
	"time"

	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/persist"
	"github.com/amala/channel/internal/world"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tradeCommitTimeout = 15 * time.Second

// HandleTradeRequest opens a trade with another character. Runs on the
// work queue.
//
// Payload: s32 target world CID. Exactly 4 bytes.
func (d *Deps) HandleTradeRequest(sess any, r *packet.Reader) bool {
	if r.PayloadSize() != 4 {
		return false
	}
	st, _ := d.client(sess)
	if st == nil {
		return false
	}
	targetCID := r.ReadS32()

	d.Queue.Submit(func() {
		if !st.Alive() {
			return
		}
		d.tradeRequest(st, targetCID)
	})
	return true
}

func (d *Deps) tradeRequest(st *world.ClientState, targetCID int32) {
	if st.Exchange() != nil {
		return // already in an exchange
	}
	target := d.World.ClientByCID(targetCID)

	ok := target != nil && target != st && target.Alive() &&
		target.Exchange() == nil &&
		st.Character != nil && target.Character != nil &&
		st.Zone() == target.Zone()
	if ok && st.Character.Entity.UserLevel <= 0 {
		ok = st.Character.CanInteract(target.Character.X, target.Character.Y,
			d.Cfg.Game.InteractDistance)
	}
	if !ok {
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_TRADE_ENDED)
		w.WriteS32(world.ExchangeOutcomeCancelled)
		st.Conn.Send(w.Bytes())
		return
	}

	st.SetExchange(world.NewExchangeSession(world.ExchangeTrade, target))
	target.SetExchange(world.NewExchangeSession(world.ExchangeTrade, st))

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_TRADE_REQUEST)
	w.WriteS32(st.WorldCID)
	w.WriteString(st.Character.Entity.Name)
	target.Conn.Send(w.Bytes())

	d.Log.Debug("trade requested",
		zap.Int32("from", st.WorldCID),
		zap.Int32("to", targetCID))
}

// HandleTradeAccept confirms the counterpart's trade request. Runs on
// the work queue.
//
// Payload: empty.
func (d *Deps) HandleTradeAccept(sess any, r *packet.Reader) bool {
	if r.PayloadSize() != 0 {
		return false
	}
	st, _ := d.client(sess)
	if st == nil {
		return false
	}

	d.Queue.Submit(func() {
		if !st.Alive() {
			return
		}
		ex := st.Exchange()
		if ex == nil {
			return
		}
		other := ex.Other
		if other == nil || !other.Alive() || other.Exchange() == nil {
			d.Mgr.EndExchange(st, world.ExchangeOutcomeCancelled)
			return
		}
		w := packet.NewWriterWithOpcode(packet.S_OPCODE_TRADE_ACCEPTED)
		w.WriteS32(st.WorldCID)
		other.Conn.Send(w.Bytes())
	})
	return true
}

// HandleTradeAddItem stages an inventory item in an exchange slot. Runs
// on the work queue. Staging an item the client does not own is
// tampering and kills the connection.
//
// Payload: s64 item handle, s8 exchange slot. Exactly 9 bytes, slot in
// range — either violation drops the connection.
func (d *Deps) HandleTradeAddItem(sess any, r *packet.Reader) bool {
	if r.PayloadSize() != 9 {
		return false
	}
	st, _ := d.client(sess)
	if st == nil {
		return false
	}
	handle := r.ReadS64()
	slot := r.ReadS8()
	if slot < 0 || int(slot) >= world.ExchangeSlots {
		return false
	}

	d.Queue.Submit(func() {
		if !st.Alive() {
			return
		}
		d.tradeAddItem(st, handle, slot)
	})
	return true
}

func (d *Deps) tradeAddItem(st *world.ClientState, handle int64, slot int8) {
	ex := st.Exchange()
	if ex == nil {
		return
	}
	other := ex.Other
	if other == nil || !other.Alive() || other.Exchange() == nil {
		d.Mgr.EndExchange(st, world.ExchangeOutcomeCancelled)
		return
	}

	uid := st.ObjectUUID(handle)
	item := d.World.Objects.Item(uid)
	box := d.Mgr.Inventory(st)
	if item == nil || box == nil || item.BoxUID != box.UID {
		st.Conn.Kill()
		return
	}

	def := d.Defs.Items.Get(item.Type)
	equipped := st.Character != nil && st.Character.Entity.EquippedSlotOf(uid) >= 0
	if def == nil || !def.Tradeable() || equipped {
		sendErrorItem(st, packet.C_OPCODE_TRADE_ADD_ITEM)
		return
	}

	ex.SetItem(int(slot), uid)

	// Any change to the staged items voids both confirmations.
	ex.SetFinished(false)
	other.Exchange().SetFinished(false)

	self := packet.NewWriterWithOpcode(packet.S_OPCODE_TRADE_ADDED)
	self.WriteS8(slot)
	self.WriteS64(handle)
	self.WriteU32(item.Type)
	self.WriteU16(item.StackSize)
	st.Conn.Send(self.Bytes())

	theirs := packet.NewWriterWithOpcode(packet.S_OPCODE_TRADE_ADDED)
	theirs.WriteS8(slot)
	theirs.WriteS64(other.ObjectHandle(uid))
	theirs.WriteU32(item.Type)
	theirs.WriteU16(item.StackSize)
	other.Conn.Send(theirs.Bytes())
}

// HandleTradeCancel aborts the exchange for both sides. Runs on the
// work queue.
//
// Payload: empty.
func (d *Deps) HandleTradeCancel(sess any, r *packet.Reader) bool {
	if r.PayloadSize() != 0 {
		return false
	}
	st, _ := d.client(sess)
	if st == nil {
		return false
	}

	d.Queue.Submit(func() {
		if !st.Alive() {
			return
		}
		d.Mgr.CancelExchange(st)
	})
	return true
}

// HandleTradeFinish confirms this side of the trade; when both sides
// have confirmed, the transfer commits. Runs on the work queue.
//
// Payload: empty.
func (d *Deps) HandleTradeFinish(sess any, r *packet.Reader) bool {
	if r.PayloadSize() != 0 {
		return false
	}
	st, _ := d.client(sess)
	if st == nil {
		return false
	}

	d.Queue.Submit(func() {
		if !st.Alive() {
			return
		}
		d.tradeFinish(st)
	})
	return true
}

func (d *Deps) tradeFinish(st *world.ClientState) {
	ex := st.Exchange()
	if ex == nil {
		return
	}
	other := ex.Other
	var otherEx *world.ExchangeSession
	if other != nil && other.Alive() {
		otherEx = other.Exchange()
	}
	if otherEx == nil || otherEx.Other != st {
		fail := packet.NewWriterWithOpcode(packet.S_OPCODE_TRADE_FINISH)
		fail.WriteS32(-1)
		st.Conn.Send(fail.Bytes())
		d.Mgr.EndExchange(st, world.ExchangeOutcomeCancelled)
		return
	}

	ex.SetFinished(true)

	notify := packet.NewWriterWithOpcode(packet.S_OPCODE_TRADE_FINISHED)
	notify.WriteS32(st.WorldCID)
	other.Conn.Send(notify.Bytes())

	reply := packet.NewWriterWithOpcode(packet.S_OPCODE_TRADE_FINISH)
	reply.WriteS32(0)
	st.Conn.Send(reply.Bytes())

	if !otherEx.Finished() {
		return
	}
	d.completeTrade(st, ex, other, otherEx)
}

// completeTrade commits a trade both sides confirmed. Ground truth is
// revalidated here: staged items must still sit in their owner's
// inventory, and each side must have room for what it receives. The
// whole transfer persists as one synchronous change set — the success
// replies must not outrun the commit.
func (d *Deps) completeTrade(st *world.ClientState, ex *world.ExchangeSession, other *world.ClientState, otherEx *world.ExchangeSession) {
	myBox := d.Mgr.Inventory(st)
	otherBox := d.Mgr.Inventory(other)
	if myBox == nil || otherBox == nil {
		d.Mgr.EndExchange(st, world.ExchangeOutcomeCancelled)
		d.Mgr.EndExchange(other, world.ExchangeOutcomeCancelled)
		return
	}

	myItems, myOK := d.resolveStaged(ex, myBox)
	otherItems, otherOK := d.resolveStaged(otherEx, otherBox)
	if !myOK || !otherOK {
		// A staged item no longer sitting in its owner's inventory means
		// the client forged or replayed state it does not hold.
		d.Mgr.EndExchange(st, world.ExchangeOutcomeCancelled)
		d.Mgr.EndExchange(other, world.ExchangeOutcomeCancelled)
		if !myOK {
			st.Conn.Kill()
		}
		if !otherOK {
			other.Conn.Kill()
		}
		return
	}

	// Slots vacated by the outgoing items count as free for what comes
	// in, so a swap between full inventories still fits.
	myFree := freeAfterRemoval(myBox, myItems)
	otherFree := freeAfterRemoval(otherBox, otherItems)
	if len(otherFree) < len(myItems) || len(myFree) < len(otherItems) {
		myOutcome := world.ExchangeOutcomeNoSpaceOther
		otherOutcome := world.ExchangeOutcomeNoSpaceSelf
		if len(myFree) < len(otherItems) {
			myOutcome = world.ExchangeOutcomeNoSpaceSelf
			otherOutcome = world.ExchangeOutcomeNoSpaceOther
		}
		d.Mgr.EndExchange(st, myOutcome)
		d.Mgr.EndExchange(other, otherOutcome)
		return
	}

	cs := persist.NewChangeSet(st.AccountUID)
	if d.transferItems(cs, st, myItems, myBox, otherBox, otherFree) {
		cs.Update(st.Character.Entity)
	}
	if d.transferItems(cs, other, otherItems, otherBox, myBox, myFree) {
		cs.Update(other.Character.Entity)
	}
	cs.Update(myBox)
	cs.Update(otherBox)

	ctx, cancel := context.WithTimeout(context.Background(), tradeCommitTimeout)
	defer cancel()
	if err := d.Store.ProcessChangeSet(ctx, cs); err != nil {
		d.Log.Error("trade commit failed",
			zap.Int32("cid_a", st.WorldCID),
			zap.Int32("cid_b", other.WorldCID),
			zap.Error(err))
		// In-memory state may disagree with storage now; drop both so
		// they reload from ground truth.
		st.Conn.Close()
		other.Conn.Close()
		return
	}

	d.Mgr.SendItemBoxData(st, myBox)
	d.Mgr.SendItemBoxData(other, otherBox)
	d.Mgr.EndExchange(st, world.ExchangeOutcomeSuccess)
	d.Mgr.EndExchange(other, world.ExchangeOutcomeSuccess)

	d.Log.Info("trade completed",
		zap.Int32("cid_a", st.WorldCID),
		zap.Int32("cid_b", other.WorldCID),
		zap.Int("items_a", len(myItems)),
		zap.Int("items_b", len(otherItems)))
}

// freeAfterRemoval returns the box's free slot indices as they will be
// once the outgoing items have left, lowest first.
func freeAfterRemoval(box *world.ItemBox, outgoing []*world.Item) []int {
	free := box.FreeSlots()
	for _, item := range outgoing {
		if slot := box.SlotOf(item.UID); slot >= 0 {
			free = append(free, slot)
		}
	}
	sort.Ints(free)
	return free
}

// resolveStaged loads the staged items and verifies each still sits in
// the owner's inventory box.
func (d *Deps) resolveStaged(ex *world.ExchangeSession, ownerBox *world.ItemBox) ([]*world.Item, bool) {
	var items []*world.Item
	for _, uid := range ex.Items() {
		item := d.World.Objects.Item(uid)
		if item == nil || item.BoxUID != ownerBox.UID {
			return nil, false
		}
		items = append(items, item)
	}
	return items, true
}

// transferItems moves items from the giver's box into the receiver's
// lowest free slots, updating back-references and recording every item
// in the change set. Returns true when the giver's equipment changed.
func (d *Deps) transferItems(cs *persist.ChangeSet, giver *world.ClientState, items []*world.Item, from, to *world.ItemBox, freeSlots []int) bool {
	unequipped := false
	for i, item := range items {
		if d.Mgr.UnequipItem(giver, item) {
			unequipped = true
		}
		if slot := from.SlotOf(item.UID); slot >= 0 {
			from.Slots[slot] = uuid.Nil
		}
		dst := freeSlots[i]
		to.Slots[dst] = item.UID
		item.BoxUID = to.UID
		item.Slot = int8(dst)
		cs.Update(item)
	}
	return unequipped
}
