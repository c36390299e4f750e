package system

import (
	"math/rand/v2"

	"github.com/amala/channel/internal/world"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MitamaBonusesPerIndex is the number of bonus IDs reserved per mitama
// type index; a granted bonus is index*32 + a random offset.
const MitamaBonusesPerIndex = 32

// DoMitamaReunion applies a mitama reunion to the target demon: rolls a
// bonus within the consumed mitama type's band and records it on the
// demon. Validation (mitama type, distinctness, index range) is the
// caller's job. Returns the granted bonus ID.
func (m *Manager) DoMitamaReunion(demon *world.Demon, mitamaIdx uint8) uint8 {
	bonusID := mitamaIdx*MitamaBonusesPerIndex + uint8(rand.IntN(MitamaBonusesPerIndex))
	demon.MitamaReunions = append(demon.MitamaReunions, bonusID)
	m.Log.Debug("mitama reunion applied",
		zap.String("demon", demon.UID.String()),
		zap.Uint8("index", mitamaIdx),
		zap.Uint8("bonus", bonusID))
	return bonusID
}

// DeleteDemon removes a demon from its box and the object registry. The
// caller owns the change set recording the deletion.
func (m *Manager) DeleteDemon(demon *world.Demon) *world.DemonBox {
	box := m.World.Objects.DemonBox(demon.BoxUID)
	if box != nil {
		if demon.Slot >= 0 && int(demon.Slot) < world.DemonBoxSlots && box.Slots[demon.Slot] == demon.UID {
			box.Slots[demon.Slot] = uuid.Nil
		}
	}
	demon.BoxUID = uuid.Nil
	demon.Slot = -1
	m.World.Objects.Unregister(demon.UID)
	return box
}
