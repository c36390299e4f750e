package world

import (
	"sync"
	"time"

	"github.com/amala/channel/internal/data"
	"github.com/google/uuid"
)

// DigitalizeState is the snapshot taken when digitalization starts.
// Anything affecting the calculation after that point does not apply
// until digitalization occurs again.
type DigitalizeState struct {
	DemonUID  uuid.UUID
	Tokusei   []int32
	StartedAt time.Time
}

// CharacterState wraps a Character with live runtime state and the
// derived tokusei caches. Caches are recomputed only by the explicit
// entry points below — equipment change, equipment expiry sweep, quest
// completion, digitalization — never implicitly on read. A cache is
// stale only between its invalidating event and the next recalc call;
// callers must recalc before relying on an updated list in the same
// task.
type CharacterState struct {
	ActiveEntityState
	Entity *Character

	mu sync.Mutex

	equipmentTokusei  []int32
	compendiumTokusei []int32
	questBonusTokusei []int32
	questBonusCount   uint32

	// Fuse bonuses applied after base stats (stat key → adjustment).
	fuseBonuses map[string]int16

	maxFusionGaugeStocks uint8

	digitalize *DigitalizeState

	// Unix seconds of the next equipped rental expiration; gates how
	// often the expiry sweep does real work. 0 = nothing expires.
	nextEquipExpiry int64
}

func NewCharacterState(c *Character) *CharacterState {
	return &CharacterState{
		ActiveEntityState: ActiveEntityState{
			EntityID: NextEntityID(),
			UID:      c.UID,
			X:        c.X,
			Y:        c.Y,
		},
		Entity:      c,
		fuseBonuses: make(map[string]int16),
	}
}

// EquipmentTokuseiIDs returns the cached tokusei IDs granted by current
// equipment. May contain duplicates (stacking sources).
func (cs *CharacterState) EquipmentTokuseiIDs() []int32 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]int32(nil), cs.equipmentTokusei...)
}

// CompendiumTokuseiIDs returns the cached compendium-granted tokusei IDs.
func (cs *CharacterState) CompendiumTokuseiIDs() []int32 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]int32(nil), cs.compendiumTokusei...)
}

// QuestBonusTokuseiIDs returns the cached quest-granted tokusei IDs.
func (cs *CharacterState) QuestBonusTokuseiIDs() []int32 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]int32(nil), cs.questBonusTokusei...)
}

// QuestBonusCount returns the cached count of bonus-granting quests.
func (cs *CharacterState) QuestBonusCount() uint32 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.questBonusCount
}

// MaxFusionGaugeStocks returns the cached fusion gauge stock count.
func (cs *CharacterState) MaxFusionGaugeStocks() uint8 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.maxFusionGaugeStocks
}

// FuseBonus returns the cached fuse adjustment for a stat key.
func (cs *CharacterState) FuseBonus(stat string) int16 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.fuseBonuses[stat]
}

// DigitalizeState returns the current digitalization snapshot, or nil.
func (cs *CharacterState) DigitalizeState() *DigitalizeState {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.digitalize
}

// RecalcEquipState fully replaces the equipment-derived caches from the
// character's current equipment. Call after every equip/unequip and
// after an expiry sweep reports work.
func (cs *CharacterState) RecalcEquipState(defs *data.Definitions, reg *Registry) {
	var tokusei []int32
	fuse := make(map[string]int16)
	var stocks uint8
	var nextExpiry int64

	now := time.Now().Unix()
	for _, uid := range cs.Entity.Equipment {
		item := reg.Item(uid)
		if item == nil {
			continue
		}
		if item.RentalExpiry != 0 {
			if item.RentalExpiry <= now {
				continue // expired, sweep will unequip it
			}
			if nextExpiry == 0 || item.RentalExpiry < nextExpiry {
				nextExpiry = item.RentalExpiry
			}
		}
		def := defs.Items.Get(item.Type)
		if def == nil {
			continue
		}
		tokusei = append(tokusei, def.Tokusei...)
		for stat, v := range def.FuseBonuses {
			fuse[stat] += v
		}
		stocks += def.FusionGaugeStocks
	}

	cs.mu.Lock()
	cs.equipmentTokusei = tokusei
	cs.fuseBonuses = fuse
	cs.maxFusionGaugeStocks = stocks
	cs.nextEquipExpiry = nextExpiry
	cs.mu.Unlock()
}

// EquipmentExpired reports whether an equipped rental item has expired
// since the last recalc. When true the caller should unequip expired
// items and call RecalcEquipState again. The stored next-expiry
// timestamp keeps the sweep cheap between expirations.
func (cs *CharacterState) EquipmentExpired(now int64) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.nextEquipExpiry != 0 && now >= cs.nextEquipExpiry
}

// UpdateQuestState recomputes the quest bonus caches. With a non-zero
// completedQuestID the update is incremental: the quest is recorded as
// complete and only its bonuses are appended. With zero, the full
// completion list is recounted. Returns true when bonuses were added.
func (cs *CharacterState) UpdateQuestState(defs *data.Definitions, completedQuestID uint32) bool {
	if completedQuestID != 0 {
		for _, q := range cs.Entity.CompletedQuests {
			if q == completedQuestID {
				return false // already counted
			}
		}
		cs.Entity.CompletedQuests = append(cs.Entity.CompletedQuests, completedQuestID)

		def := defs.Quests.Get(completedQuestID)
		if def == nil || !def.GrantsBonus() {
			return false
		}
		cs.mu.Lock()
		cs.questBonusTokusei = append(cs.questBonusTokusei, def.BonusTokusei...)
		cs.questBonusCount++
		cs.mu.Unlock()
		return true
	}

	var tokusei []int32
	var count uint32
	for _, q := range cs.Entity.CompletedQuests {
		def := defs.Quests.Get(q)
		if def != nil && def.GrantsBonus() {
			tokusei = append(tokusei, def.BonusTokusei...)
			count++
		}
	}

	cs.mu.Lock()
	grew := count > cs.questBonusCount
	cs.questBonusTokusei = tokusei
	cs.questBonusCount = count
	cs.mu.Unlock()
	return grew
}

// UpdateCompendiumTokuseiIDs fully replaces the compendium cache.
func (cs *CharacterState) UpdateCompendiumTokuseiIDs(ids []int32) {
	cs.mu.Lock()
	cs.compendiumTokusei = append([]int32(nil), ids...)
	cs.mu.Unlock()
}

// Digitalize begins digitalization with the supplied demon, snapshotting
// the granted tokusei at start time. A nil demon ends digitalization.
// Returns the new state, or nil when ended.
func (cs *CharacterState) Digitalize(demon *Demon, defs *data.Definitions) *DigitalizeState {
	if demon == nil {
		cs.mu.Lock()
		cs.digitalize = nil
		cs.mu.Unlock()
		return nil
	}

	if defs.Devils.Get(demon.Type) == nil {
		return nil // unknown demon type cannot digitalize
	}

	// Reunion progress feeds the digitalize bonus set.
	var tokusei []int32
	for idx, rank := range demon.Reunion {
		if rank > 0 {
			tokusei = append(tokusei, int32(idx+1)*100+int32(rank))
		}
	}

	st := &DigitalizeState{
		DemonUID:  demon.UID,
		Tokusei:   tokusei,
		StartedAt: time.Now(),
	}
	cs.mu.Lock()
	cs.digitalize = st
	cs.mu.Unlock()
	return st
}
