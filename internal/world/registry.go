package world

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the UUID-indexed arena of live persistent objects. Typed
// lookups resolve the concrete kind at the registry boundary so callers
// never downcast entity state themselves.
type Registry struct {
	mu      sync.RWMutex
	objects map[uuid.UUID]Persistent
}

func NewRegistry() *Registry {
	return &Registry{objects: make(map[uuid.UUID]Persistent)}
}

// Register adds (or replaces) a persistent object.
func (r *Registry) Register(obj Persistent) {
	r.mu.Lock()
	r.objects[obj.UUID()] = obj
	r.mu.Unlock()
}

// Unregister removes an object; no-op when absent.
func (r *Registry) Unregister(uid uuid.UUID) {
	r.mu.Lock()
	delete(r.objects, uid)
	r.mu.Unlock()
}

// Get returns the raw object, or nil.
func (r *Registry) Get(uid uuid.UUID) Persistent {
	if uid == uuid.Nil {
		return nil
	}
	r.mu.RLock()
	obj := r.objects[uid]
	r.mu.RUnlock()
	return obj
}

// Item returns the item with the given UUID, or nil when absent or of
// another kind.
func (r *Registry) Item(uid uuid.UUID) *Item {
	obj, _ := r.Get(uid).(*Item)
	return obj
}

// ItemBox returns the item box with the given UUID, or nil.
func (r *Registry) ItemBox(uid uuid.UUID) *ItemBox {
	obj, _ := r.Get(uid).(*ItemBox)
	return obj
}

// Demon returns the demon with the given UUID, or nil.
func (r *Registry) Demon(uid uuid.UUID) *Demon {
	obj, _ := r.Get(uid).(*Demon)
	return obj
}

// DemonBox returns the demon box with the given UUID, or nil.
func (r *Registry) DemonBox(uid uuid.UUID) *DemonBox {
	obj, _ := r.Get(uid).(*DemonBox)
	return obj
}

// Character returns the character with the given UUID, or nil.
func (r *Registry) Character(uid uuid.UUID) *Character {
	obj, _ := r.Get(uid).(*Character)
	return obj
}
