package system

import (
	"github.com/amala/channel/internal/persist"
	"github.com/amala/channel/internal/world"
	"go.uber.org/zap"
)

// HandleDisconnect tears down a client's world presence: marks the state
// dead so queued tasks become no-ops, cancels any exchange for the
// counterpart, removes the client's entities from the zone, and queues a
// final position save. Safe to call exactly once from the connection's
// teardown hook.
func (m *Manager) HandleDisconnect(st *world.ClientState) {
	if st == nil {
		return
	}
	st.MarkDead()

	if ex := st.Exchange(); ex != nil {
		st.SetExchange(nil)
		if other := ex.Other; other != nil && other.Alive() {
			m.EndExchange(other, world.ExchangeOutcomeCancelled)
		}
	}

	if z := st.Zone(); z != nil {
		if st.Character != nil {
			z.RemoveEntity(st.Character.EntityID)
		}
		if st.Demon != nil {
			z.RemoveEntity(st.Demon.EntityID)
		}
		st.SetZone(nil)
	}

	m.World.RemoveClient(st)

	if st.Character != nil {
		c := st.Character.Entity
		c.X = st.Character.X
		c.Y = st.Character.Y
		cs := persist.NewChangeSet(st.AccountUID)
		cs.Update(c)
		m.Store.QueueChangeSet(cs)
	}

	m.Log.Info("client disconnected",
		zap.Int32("cid", st.WorldCID),
		zap.Int("online", m.World.ClientCount()))
}
