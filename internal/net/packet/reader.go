package packet

import (
	"encoding/binary"

	"golang.org/x/text/encoding/japanese"
)

// Reader reads packet fields from a decoded payload.
// Bytes 0-1 are always the little-endian opcode.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 2} // skip opcode
}

func (r *Reader) Opcode() uint16 {
	if len(r.data) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(r.data)
}

// ReadS8 reads 1 signed byte.
func (r *Reader) ReadS8() int8 {
	if r.off >= len(r.data) {
		return 0
	}
	v := int8(r.data[r.off])
	r.off++
	return v
}

// ReadU8 reads 1 unsigned byte.
func (r *Reader) ReadU8() uint8 {
	if r.off >= len(r.data) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadU16 reads 2 bytes as little-endian uint16.
func (r *Reader) ReadU16() uint16 {
	if r.off+2 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadS32 reads 4 bytes as little-endian int32.
func (r *Reader) ReadS32() int32 {
	if r.off+4 > len(r.data) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadU32 reads 4 bytes as little-endian uint32.
func (r *Reader) ReadU32() uint32 {
	if r.off+4 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

// ReadS64 reads 8 bytes as little-endian int64.
func (r *Reader) ReadS64() int64 {
	if r.off+8 > len(r.data) {
		return 0
	}
	v := int64(binary.LittleEndian.Uint64(r.data[r.off:]))
	r.off += 8
	return v
}

// ReadString reads a uint16 length prefix followed by CP932 bytes and
// returns UTF-8. The client encodes all text as Shift-JIS.
func (r *Reader) ReadString() string {
	n := int(r.ReadU16())
	if n == 0 || r.off+n > len(r.data) {
		return ""
	}
	raw := r.data[r.off : r.off+n]
	r.off += n
	return cp932ToUTF8(raw)
}

// cp932ToUTF8 converts CP932 (Shift-JIS) bytes to a UTF-8 string.
// Pure ASCII passes through unchanged.
func cp932ToUTF8(raw []byte) string {
	allASCII := true
	for _, b := range raw {
		if b >= 0x80 {
			allASCII = false
			break
		}
	}
	if allASCII {
		return string(raw)
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw) // fallback to raw bytes
	}
	return string(decoded)
}

// Left returns the number of unread bytes after the opcode.
func (r *Reader) Left() int {
	return len(r.data) - r.off
}

// PayloadSize returns the payload length excluding the opcode field.
func (r *Reader) PayloadSize() int {
	if len(r.data) < 2 {
		return 0
	}
	return len(r.data) - 2
}
