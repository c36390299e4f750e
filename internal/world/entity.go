package world

import (
	"math"
	"sync/atomic"

	"github.com/google/uuid"
)

// entityIDCounter generates runtime entity IDs. These are scoped to the
// server process; persistence correlates via UUIDs instead.
var entityIDCounter atomic.Int32

func init() {
	entityIDCounter.Store(1_000_000)
}

// NextEntityID returns a unique runtime entity ID.
func NextEntityID() int32 {
	return entityIDCounter.Add(1)
}

// ActiveEntityState carries the live, non-persisted fields every zone
// entity has: runtime ID, persistent correlation UUID (zero for
// constructs like NPCs), and position.
type ActiveEntityState struct {
	EntityID int32
	UID      uuid.UUID
	X, Y     float64
}

// Distance returns the euclidean distance to a point.
func (s *ActiveEntityState) Distance(x, y float64) float64 {
	dx := s.X - x
	dy := s.Y - y
	return math.Sqrt(dx*dx + dy*dy)
}

// CanInteract reports whether a point is within interaction range.
func (s *ActiveEntityState) CanInteract(x, y, maxDist float64) bool {
	return s.Distance(x, y) <= maxDist
}

// EntityKind discriminates the closed set of zone entity variants.
type EntityKind int

const (
	EntityCharacter EntityKind = iota
	EntityDemon
	EntityNPC
	EntityObject
	EntityPlasma
)

// Action is one entry of a server object's action list, naming a script
// function with fixed arguments.
type Action struct {
	Function string
	Args     []int32
}

// NPCState is a talkable zone NPC.
type NPCState struct {
	ActiveEntityState
	DefinitionID uint32
	Actions      []Action
}

// ObjectState is a non-NPC interactable zone object.
type ObjectState struct {
	ActiveEntityState
	DefinitionID uint32
	Actions      []Action
}

// Entity is the tagged variant stored in a zone's entity table. Exactly
// one of the state pointers matching Kind is non-nil; lookups resolve
// the concrete kind here instead of downcasting elsewhere.
type Entity struct {
	ID   int32
	Kind EntityKind

	Character *CharacterState
	Demon     *DemonState
	NPC       *NPCState
	Object    *ObjectState
	Plasma    *PlasmaState
}

// Position returns the entity's current coordinates.
func (e *Entity) Position() (float64, float64) {
	switch e.Kind {
	case EntityCharacter:
		return e.Character.X, e.Character.Y
	case EntityDemon:
		return e.Demon.X, e.Demon.Y
	case EntityNPC:
		return e.NPC.X, e.NPC.Y
	case EntityObject:
		return e.Object.X, e.Object.Y
	case EntityPlasma:
		return e.Plasma.X, e.Plasma.Y
	}
	return 0, 0
}

// ActionList returns the entity's action list, or nil for kinds without one.
func (e *Entity) ActionList() []Action {
	switch e.Kind {
	case EntityNPC:
		return e.NPC.Actions
	case EntityObject:
		return e.Object.Actions
	}
	return nil
}
