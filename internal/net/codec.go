package net

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	frameHeaderSize = 2

	// MaxPayloadSize bounds a single packet payload. The 2-byte length
	// header counts itself, so the payload can never exceed this.
	MaxPayloadSize = 65535 - frameHeaderSize

	// minPayloadSize is the opcode alone; shorter frames cannot name a
	// handler and are treated as stream corruption.
	minPayloadSize = 2
)

// ReadFrame reads one length-prefixed packet from the stream and returns
// its payload: a little-endian opcode followed by the packet fields. The
// length header counts itself.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	n := int(binary.LittleEndian.Uint16(hdr[:])) - frameHeaderSize
	if n < minPayloadSize {
		return nil, fmt.Errorf("frame too short: %d bytes", n+frameHeaderSize)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read %d-byte frame: %w", n, err)
	}
	return payload, nil
}

// WriteFrame prefixes the payload with its length and writes both in a
// single syscall.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("payload too large: %d bytes", len(payload))
	}

	buf := make([]byte, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint16(buf, uint16(len(buf)))
	copy(buf[frameHeaderSize:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write %d-byte frame: %w", len(payload), err)
	}
	return nil
}
