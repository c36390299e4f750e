package net

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Server accepts TCP connections and creates Sessions.
type Server struct {
	listener     net.Listener
	nextID       atomic.Uint64
	inSize       int
	outSize      int
	pktPerSec    int
	writeTimeout time.Duration
	onAccept     func(*Session)
	log          *zap.Logger
	closeCh      chan struct{}
}

func NewServer(bindAddr string, inSize, outSize, pktPerSec int, writeTimeout time.Duration, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener:     ln,
		inSize:       inSize,
		outSize:      outSize,
		pktPerSec:    pktPerSec,
		writeTimeout: writeTimeout,
		log:          log,
		closeCh:      make(chan struct{}),
	}, nil
}

// SetOnAccept installs the callback invoked for every new session before
// its goroutines start. Must be set before AcceptLoop.
func (s *Server) SetOnAccept(fn func(*Session)) {
	s.onAccept = fn
}

// AcceptLoop runs in its own goroutine. It accepts connections and creates
// sessions.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.inSize, s.outSize, s.pktPerSec, s.writeTimeout, s.log)

		s.log.Info(fmt.Sprintf("client connected  session=%d  ip=%s", id, sess.IP))

		if s.onAccept != nil {
			s.onAccept(sess)
		}
		sess.Start()
	}
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
