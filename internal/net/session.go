package net

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amala/channel/internal/net/packet"
	"go.uber.org/zap"
)

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; a per-session dispatch goroutine drains InQueue
// and routes packets through the registry.
type Session struct {
	ID   uint64
	conn net.Conn

	state atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan []byte // dispatch goroutine reads packets from here
	OutQueue chan []byte // writer goroutine reads from here

	IP string

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	onClose   func() // teardown hook, runs exactly once

	writeTimeout time.Duration

	// Per-second packet rate limiter (readLoop goroutine only, no lock needed)
	pktPerSec  int
	pktCount   int
	pktResetAt int64

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, inSize, outSize, pktPerSec int, writeTimeout time.Duration, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		conn:         conn,
		InQueue:      make(chan []byte, inSize),
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		closeCh:      make(chan struct{}),
		writeTimeout: writeTimeout,
		pktPerSec:    pktPerSec,
		log:          log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateHandshake))
	return s
}

// SessionID returns the server-assigned connection ID.
func (s *Session) SessionID() uint64 {
	return s.ID
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// SetOnClose installs a teardown hook invoked once when the session closes.
// Must be set before Start.
func (s *Session) SetOnClose(fn func()) {
	s.onClose = fn
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send queues a packet for the writer goroutine. Non-blocking: a full
// queue disconnects the slow session (backpressure).
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- data:
	default:
		s.log.Warn("output queue full, dropping slow connection")
		s.Close()
	}
}

// Close gracefully shuts down the session. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// Kill force-disconnects a session whose requests can no longer be
// trusted (tamper detection). Alias of Close, kept separate so call
// sites read as intent.
func (s *Session) Kill() {
	s.log.Warn("session killed")
	s.Close()
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed when the session shuts down.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

// readLoop runs in its own goroutine. It reads frames from the TCP
// connection and pushes them onto InQueue for the dispatch goroutine.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		payload, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		// Per-second packet rate limiter
		if s.pktPerSec > 0 {
			now := time.Now().Unix()
			if now != s.pktResetAt {
				s.pktCount = 0
				s.pktResetAt = now
			}
			s.pktCount++
			if s.pktCount > s.pktPerSec {
				s.log.Warn("packet rate exceeded, dropping connection", zap.Int("pps", s.pktCount))
				return
			}
		}

		// Block until InQueue has space or the session closes. The
		// readLoop goroutine is per-session, so this only stalls the
		// offending client.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

// DispatchLoop drains InQueue and routes each packet through the registry.
// A dispatch error is a protocol violation: the connection is dropped.
// Runs in its own goroutine per session.
func (s *Session) DispatchLoop(reg *packet.Registry) {
	defer s.Close()

	for {
		select {
		case data := <-s.InQueue:
			if err := reg.Dispatch(s, s.State(), data); err != nil {
				s.log.Warn("protocol violation", zap.Error(err))
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop runs in its own goroutine. It reads packets from OutQueue and
// writes them as framed data to the TCP connection.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := WriteFrame(s.conn, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
