// Package world holds the in-memory game state: the persistent object
// arena, zones and their runtime entity tables, per-connection client
// states, and the exchange sessions coordinating two-party protocols.
// There is no lock spanning multiple entities; cross-party operations
// must re-validate ground truth at commit time.
package world

import (
	"sync"
)

// State is the root of the live world: client states by session ID and
// entity ID, zones by zone ID, and the persistent object registry.
type State struct {
	Objects *Registry

	mu        sync.RWMutex
	bySession map[uint64]*ClientState
	byCID     map[int32]*ClientState
	zones     map[uint32]*Zone
}

func NewState() *State {
	return &State{
		Objects:   NewRegistry(),
		bySession: make(map[uint64]*ClientState),
		byCID:     make(map[int32]*ClientState),
		zones:     make(map[uint32]*Zone),
	}
}

// AddClient registers a client state after the lobby hand-off.
func (s *State) AddClient(st *ClientState) {
	s.mu.Lock()
	s.bySession[st.Conn.SessionID()] = st
	s.byCID[st.WorldCID] = st
	s.mu.Unlock()
}

// RemoveClient drops a client state. Idempotent.
func (s *State) RemoveClient(st *ClientState) {
	s.mu.Lock()
	delete(s.bySession, st.Conn.SessionID())
	delete(s.byCID, st.WorldCID)
	s.mu.Unlock()
}

// ClientBySession returns the client state for a session ID, or nil.
func (s *State) ClientBySession(sessionID uint64) *ClientState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bySession[sessionID]
}

// ClientByCID returns the client state for a world character ID, or nil.
func (s *State) ClientByCID(cid int32) *ClientState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byCID[cid]
}

// Zone returns the zone with the given ID, creating it on first use.
func (s *State) Zone(id uint32) *Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zones[id]
	if !ok {
		z = NewZone(id)
		s.zones[id] = z
	}
	return z
}

// Clients returns a snapshot of all connected client states.
func (s *State) Clients() []*ClientState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ClientState, 0, len(s.bySession))
	for _, st := range s.bySession {
		out = append(out, st)
	}
	return out
}

// ClientCount returns the number of connected, handed-off clients.
func (s *State) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bySession)
}
