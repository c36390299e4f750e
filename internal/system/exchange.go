package system

import (
	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/world"
)

// EndExchange tears down this side's exchange session and notifies the
// client with the outcome code. Idempotent: a side whose exchange is
// already gone only gets the notification skipped.
func (m *Manager) EndExchange(st *world.ClientState, outcome int32) {
	ex := st.Exchange()
	if ex == nil {
		return
	}
	st.SetExchange(nil)

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_TRADE_ENDED)
	w.WriteS32(outcome)
	st.Conn.Send(w.Bytes())
}

// CancelExchange ends both sides of an exchange with the cancelled
// outcome. Safe to call when the counterpart is already gone.
func (m *Manager) CancelExchange(st *world.ClientState) {
	ex := st.Exchange()
	if ex == nil {
		return
	}
	if other := ex.Other; other != nil && other.Alive() {
		m.EndExchange(other, world.ExchangeOutcomeCancelled)
	}
	m.EndExchange(st, world.ExchangeOutcomeCancelled)
}
