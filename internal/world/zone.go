package world

import (
	"sync"
)

// Zone holds the runtime entity table for one zone instance. Entities
// are addressed by runtime int32 IDs; readers must tolerate entities
// disappearing between lookups (disconnects run concurrently).
type Zone struct {
	ID uint32

	mu       sync.RWMutex
	entities map[int32]*Entity
}

func NewZone(id uint32) *Zone {
	return &Zone{
		ID:       id,
		entities: make(map[int32]*Entity),
	}
}

// GetEntity returns the entity with the given runtime ID, or nil.
func (z *Zone) GetEntity(id int32) *Entity {
	z.mu.RLock()
	e := z.entities[id]
	z.mu.RUnlock()
	return e
}

func (z *Zone) add(e *Entity) {
	z.mu.Lock()
	z.entities[e.ID] = e
	z.mu.Unlock()
}

// RemoveEntity drops an entity from the zone table; no-op when absent.
func (z *Zone) RemoveEntity(id int32) {
	z.mu.Lock()
	delete(z.entities, id)
	z.mu.Unlock()
}

// AddCharacter registers a character state as a zone entity.
func (z *Zone) AddCharacter(cs *CharacterState) {
	z.add(&Entity{ID: cs.EntityID, Kind: EntityCharacter, Character: cs})
}

// AddDemon registers a demon state as a zone entity.
func (z *Zone) AddDemon(ds *DemonState) {
	z.add(&Entity{ID: ds.EntityID, Kind: EntityDemon, Demon: ds})
}

// AddNPC registers an NPC as a zone entity.
func (z *Zone) AddNPC(n *NPCState) {
	z.add(&Entity{ID: n.EntityID, Kind: EntityNPC, NPC: n})
}

// AddObject registers a server object as a zone entity.
func (z *Zone) AddObject(o *ObjectState) {
	z.add(&Entity{ID: o.EntityID, Kind: EntityObject, Object: o})
}

// AddPlasma registers a plasma spawner as a zone entity.
func (z *Zone) AddPlasma(p *PlasmaState) {
	z.add(&Entity{ID: p.EntityID, Kind: EntityPlasma, Plasma: p})
}
