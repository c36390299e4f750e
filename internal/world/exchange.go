package world

import (
	"sync"

	"github.com/google/uuid"
)

// ExchangeSlots is the number of staging slots per exchange side.
const ExchangeSlots = 30

// ExchangeType discriminates the multi-party synchronization protocols
// built on an exchange session.
type ExchangeType int

const (
	ExchangeTrade ExchangeType = iota
	ExchangeTriFusion
)

// Exchange end outcome codes delivered to each side at teardown.
const (
	ExchangeOutcomeSuccess   int32 = 0
	ExchangeOutcomeCancelled int32 = 1
	// This side lacked the free slots to receive.
	ExchangeOutcomeNoSpaceSelf int32 = 2
	// The counterpart lacked the free slots to receive.
	ExchangeOutcomeNoSpaceOther int32 = 3
)

// ExchangeSession is one side's view of a two-party exchange. Each
// participant holds its own session; Other points at the counterpart's
// client state so either side can observe the counterpart's finished
// flag. Readers must tolerate the counterpart being torn down
// concurrently by a disconnect.
type ExchangeSession struct {
	Type ExchangeType

	// Other is the counterpart's client state.
	Other *ClientState

	mu       sync.Mutex
	items    [ExchangeSlots]uuid.UUID
	finished bool
}

func NewExchangeSession(t ExchangeType, other *ClientState) *ExchangeSession {
	return &ExchangeSession{Type: t, Other: other}
}

// SetItem stages an object UUID in a slot (zero UUID unstages).
// Returns false for an out-of-range slot.
func (ex *ExchangeSession) SetItem(slot int, uid uuid.UUID) bool {
	if slot < 0 || slot >= ExchangeSlots {
		return false
	}
	ex.mu.Lock()
	ex.items[slot] = uid
	ex.mu.Unlock()
	return true
}

// Items returns the staged object UUIDs, skipping empty slots.
func (ex *ExchangeSession) Items() []uuid.UUID {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	var out []uuid.UUID
	for _, uid := range ex.items {
		if uid != uuid.Nil {
			out = append(out, uid)
		}
	}
	return out
}

// Contains reports whether an object UUID is staged.
func (ex *ExchangeSession) Contains(uid uuid.UUID) bool {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	for _, s := range ex.items {
		if s == uid {
			return true
		}
	}
	return false
}

// SetFinished sets this side's finished flag.
func (ex *ExchangeSession) SetFinished(v bool) {
	ex.mu.Lock()
	ex.finished = v
	ex.mu.Unlock()
}

// Finished reports this side's finished flag.
func (ex *ExchangeSession) Finished() bool {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.finished
}
