package handler

import (
	"github.com/amala/channel/internal/net/packet"
)

// HandleLogout acknowledges the request and closes the connection. The
// session teardown hook runs the full world teardown.
//
// Payload: empty.
func (d *Deps) HandleLogout(sess any, r *packet.Reader) bool {
	if r.PayloadSize() != 0 {
		return false
	}
	_, c := d.client(sess)
	if c == nil {
		return false
	}

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_LOGOUT)
	w.WriteS32(0)
	c.Send(w.Bytes())
	c.Close()
	return true
}
