package packet

import (
	"encoding/binary"

	"golang.org/x/text/encoding/japanese"
)

// Writer builds a server packet. All multi-byte writes are little-endian.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

func NewWriterWithOpcode(opcode uint16) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteU16(opcode)
	return w
}

// WriteS8 writes 1 signed byte.
func (w *Writer) WriteS8(v int8) {
	w.buf = append(w.buf, byte(v))
}

// WriteU8 writes 1 unsigned byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteU16 writes 2 bytes little-endian.
func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteS32 writes 4 bytes little-endian.
func (w *Writer) WriteS32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteU32 writes 4 bytes little-endian unsigned.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteS64 writes 8 bytes little-endian.
func (w *Writer) WriteS64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteString writes a uint16 length prefix followed by the string
// converted from UTF-8 to CP932 (Shift-JIS).
func (w *Writer) WriteString(s string) {
	if len(s) == 0 {
		w.WriteU16(0)
		return
	}
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	if err != nil {
		encoded = []byte(s) // pure ASCII survives as-is
	}
	w.WriteU16(uint16(len(encoded)))
	w.buf = append(w.buf, encoded...)
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the packet content.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the current length including the opcode field.
func (w *Writer) Len() int {
	return len(w.buf)
}
