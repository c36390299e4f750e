// Package system holds game logic shared between packet handlers:
// inventory and equipment bookkeeping, exchange teardown, demon
// lifecycle, and the periodic sweeps.
package system

import (
	"github.com/amala/channel/internal/data"
	"github.com/amala/channel/internal/persist"
	"github.com/amala/channel/internal/world"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager bundles the world state, data tables and store that the
// shared game operations need.
type Manager struct {
	World *world.State
	Defs  *data.Definitions
	Store persist.Store
	Log   *zap.Logger
}

func NewManager(w *world.State, defs *data.Definitions, store persist.Store, log *zap.Logger) *Manager {
	return &Manager{World: w, Defs: defs, Store: store, Log: log}
}

// Inventory returns the client's inventory box, or nil.
func (m *Manager) Inventory(st *world.ClientState) *world.ItemBox {
	if st.Character == nil {
		return nil
	}
	return m.World.Objects.ItemBox(st.Character.Entity.InventoryUID)
}

// FreeInventorySlots returns the free slot indices of the client's
// inventory, lowest first.
func (m *Manager) FreeInventorySlots(st *world.ClientState) []int {
	box := m.Inventory(st)
	if box == nil {
		return nil
	}
	return box.FreeSlots()
}

// UnequipItem clears the item from the character's equipment if it is
// equipped and recomputes the equipment caches. Returns true when the
// equipment actually changed; the caller owns persisting the character.
func (m *Manager) UnequipItem(st *world.ClientState, item *world.Item) bool {
	cs := st.Character
	if cs == nil {
		return false
	}
	slot := cs.Entity.EquippedSlotOf(item.UID)
	if slot < 0 {
		return false
	}
	cs.Entity.Equipment[slot] = uuid.Nil
	cs.RecalcEquipState(m.Defs, m.World.Objects)
	return true
}
