package system

import (
	"context"
	"time"

	"github.com/amala/channel/internal/persist"
	"github.com/amala/channel/internal/world"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunEquipExpirySweep unequips expired rental items for every online
// character whose cached next-expiry gate has passed. Each client with
// work gets its equipment caches recomputed, a fresh inventory view, and
// a queued change set. Returns the number of clients swept.
func (m *Manager) RunEquipExpirySweep(now time.Time) int {
	nowSec := now.Unix()
	var swept int
	for _, st := range m.World.Clients() {
		if !st.Alive() || st.Character == nil {
			continue
		}
		if !st.Character.EquipmentExpired(nowSec) {
			continue
		}
		if m.sweepClient(st, nowSec) {
			swept++
		}
	}
	return swept
}

func (m *Manager) sweepClient(st *world.ClientState, nowSec int64) bool {
	cs := st.Character
	changed := false
	chg := persist.NewChangeSet(st.AccountUID)

	for slot, uid := range cs.Entity.Equipment {
		item := m.World.Objects.Item(uid)
		if item == nil || item.RentalExpiry == 0 || item.RentalExpiry > nowSec {
			continue
		}
		cs.Entity.Equipment[slot] = uuid.Nil
		chg.Update(item)
		changed = true
		m.Log.Debug("rental item expired",
			zap.Int32("cid", st.WorldCID),
			zap.String("item", item.UID.String()))
	}
	if !changed {
		return false
	}

	cs.RecalcEquipState(m.Defs, m.World.Objects)
	chg.Update(cs.Entity)
	m.Store.QueueChangeSet(chg)

	if box := m.Inventory(st); box != nil {
		m.SendItemBoxData(st, box)
	}
	return true
}

// StartEquipExpiryLoop runs the sweep on the given interval until the
// context is cancelled.
func (m *Manager) StartEquipExpiryLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				if n := m.RunEquipExpirySweep(t); n > 0 {
					m.Log.Info("equip expiry sweep", zap.Int("clients", n))
				}
			}
		}
	}()
}
