package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// SessionState represents the session's current protocol phase.
type SessionState int

const (
	StateHandshake     SessionState = iota // connected, awaiting lobby hand-off
	StateInWorld                           // playing
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateInWorld:
		return "InWorld"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for packet handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
//
// The return value is the Parse contract: false means the payload did not
// match the opcode's required shape — a protocol violation that drops the
// connection. Any structurally valid payload returns true, regardless of
// in-game success; in-game failure is a status code in the reply packet.
type HandlerFunc func(sess any, r *Reader) bool

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps opcodes to handlers with state-based access control.
type Registry struct {
	handlers map[uint16]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[uint16]*handlerEntry),
		log:      log,
	}
}

// Register maps an opcode to a handler, restricted to the given session states.
func (reg *Registry) Register(opcode uint16, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[opcode] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Dispatch finds the handler for the opcode in data[0:2], validates the
// session state, and calls the handler. Returns an error if the frame is
// malformed, the session state is not allowed, or the handler rejects the
// payload shape — all of which should drop the connection.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("short packet (%d bytes)", len(data))
	}
	r := NewReader(data)
	opcode := r.Opcode()
	reg.log.Debug("packet received",
		zap.Uint16("opcode", opcode),
		zap.Int("size", len(data)),
		zap.String("state", state.String()),
	)

	entry, ok := reg.handlers[opcode]
	if !ok {
		reg.log.Debug("unknown opcode", zap.Uint16("opcode", opcode), zap.String("state", state.String()))
		return nil // silently ignore unknown opcodes
	}

	if !entry.allowedStates[state] {
		reg.log.Warn("opcode not allowed in state",
			zap.Uint16("opcode", opcode),
			zap.String("state", state.String()),
		)
		return fmt.Errorf("opcode %d not allowed in state %s", opcode, state)
	}

	ok, err := reg.safeCall(entry.fn, sess, r, opcode)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("malformed payload for opcode %d (%d bytes)", opcode, len(data))
	}
	return nil
}

// safeCall executes a handler with panic recovery so a single bad packet
// cannot take down the whole server.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, r *Reader, opcode uint16) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.Uint16("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %d: %v", opcode, rec)
		}
	}()
	return fn(sess, r), nil
}
