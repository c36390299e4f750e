package world

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Conn is the narrow connection surface game code needs. *net.Session
// satisfies it; tests substitute an in-memory fake.
type Conn interface {
	SessionID() uint64
	Send(data []byte)
	// Close shuts the connection down gracefully.
	Close()
	// Kill force-disconnects a connection whose requests can no longer
	// be trusted.
	Kill()
}

// ClientState is the per-connection authoritative context created at the
// lobby hand-off: account identity, bound character and demon state,
// current zone, the active exchange session if any, and the table
// mapping client-local object handles to persistent UUIDs.
type ClientState struct {
	Conn Conn

	AccountUID uuid.UUID
	// World-scoped character ID used for cross-entity attribution.
	WorldCID int32

	Character *CharacterState
	Demon     *DemonState

	alive atomic.Bool

	mu       sync.Mutex
	zone     *Zone
	exchange *ExchangeSession

	// Client-supplied handles resolve here; clients never address raw
	// object identifiers.
	handles    map[int64]uuid.UUID
	handleRev  map[uuid.UUID]int64
	nextHandle int64
}

func NewClientState(conn Conn, accountUID uuid.UUID, worldCID int32) *ClientState {
	st := &ClientState{
		Conn:       conn,
		AccountUID: accountUID,
		WorldCID:   worldCID,
		handles:    make(map[int64]uuid.UUID),
		handleRev:  make(map[uuid.UUID]int64),
	}
	st.alive.Store(true)
	return st
}

// Alive reports whether the session is still live. Tasks queued before a
// disconnect must treat a dead state as "do nothing".
func (st *ClientState) Alive() bool {
	return st.alive.Load()
}

// MarkDead flips the state to dead. Idempotent.
func (st *ClientState) MarkDead() {
	st.alive.Store(false)
}

// Zone returns the current zone, or nil before enter/after leave.
func (st *ClientState) Zone() *Zone {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.zone
}

// SetZone binds the client to a zone.
func (st *ClientState) SetZone(z *Zone) {
	st.mu.Lock()
	st.zone = z
	st.mu.Unlock()
}

// Exchange returns the active exchange session, or nil.
func (st *ClientState) Exchange() *ExchangeSession {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.exchange
}

// SetExchange installs (or clears, with nil) the active exchange.
func (st *ClientState) SetExchange(ex *ExchangeSession) {
	st.mu.Lock()
	st.exchange = ex
	st.mu.Unlock()
}

// ObjectHandle returns the client-local handle for an object, issuing a
// new one on first use.
func (st *ClientState) ObjectHandle(uid uuid.UUID) int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	if h, ok := st.handleRev[uid]; ok {
		return h
	}
	st.nextHandle++
	h := st.nextHandle
	st.handles[h] = uid
	st.handleRev[uid] = h
	return h
}

// ObjectUUID resolves a client-supplied handle. Returns the zero UUID
// for unknown handles — callers must treat that as "object not found",
// never trust the handle alone.
func (st *ClientState) ObjectUUID(handle int64) uuid.UUID {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.handles[handle]
}
