package packet

import (
	"encoding/binary"
	"testing"
)

func payload(opcode uint16, body ...byte) []byte {
	buf := make([]byte, 2, 2+len(body))
	binary.LittleEndian.PutUint16(buf, opcode)
	return append(buf, body...)
}

func TestReaderFieldOrder(t *testing.T) {
	w := NewWriterWithOpcode(0x0025)
	w.WriteS8(-3)
	w.WriteU16(700)
	w.WriteS32(-100000)
	w.WriteS64(1 << 40)

	r := NewReader(w.Bytes())
	if r.Opcode() != 0x0025 {
		t.Fatalf("opcode = %#x, want 0x0025", r.Opcode())
	}
	if got := r.ReadS8(); got != -3 {
		t.Errorf("ReadS8 = %d, want -3", got)
	}
	if got := r.ReadU16(); got != 700 {
		t.Errorf("ReadU16 = %d, want 700", got)
	}
	if got := r.ReadS32(); got != -100000 {
		t.Errorf("ReadS32 = %d, want -100000", got)
	}
	if got := r.ReadS64(); got != 1<<40 {
		t.Errorf("ReadS64 = %d, want %d", got, int64(1)<<40)
	}
	if r.Left() != 0 {
		t.Errorf("Left = %d, want 0", r.Left())
	}
}

func TestReaderTruncatedReadsReturnZero(t *testing.T) {
	r := NewReader(payload(0x0001, 0xFF, 0xFF)) // only 2 body bytes
	if got := r.ReadS32(); got != 0 {
		t.Errorf("truncated ReadS32 = %d, want 0", got)
	}
	if got := r.ReadS64(); got != 0 {
		t.Errorf("truncated ReadS64 = %d, want 0", got)
	}
}

func TestReaderPayloadSize(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want int
	}{
		{"empty body", payload(0x0001), 0},
		{"five bytes", payload(0x0001, 1, 2, 3, 4, 5), 5},
		{"opcode only missing", []byte{0x01}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewReader(tt.data).PayloadSize(); got != tt.want {
				t.Errorf("PayloadSize = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadStringASCII(t *testing.T) {
	w := NewWriterWithOpcode(0x0003)
	w.WriteString("tester")
	r := NewReader(w.Bytes())
	if got := r.ReadString(); got != "tester" {
		t.Errorf("ReadString = %q, want %q", got, "tester")
	}
}

func TestReadStringShiftJIS(t *testing.T) {
	w := NewWriterWithOpcode(0x0003)
	w.WriteString("テスト")
	r := NewReader(w.Bytes())
	if got := r.ReadString(); got != "テスト" {
		t.Errorf("ReadString = %q, want %q", got, "テスト")
	}
}

func TestReadStringTruncatedLength(t *testing.T) {
	// Length prefix claims 10 bytes, body has 2.
	r := NewReader(payload(0x0003, 0x0A, 0x00, 'a', 'b'))
	if got := r.ReadString(); got != "" {
		t.Errorf("ReadString = %q, want empty", got)
	}
}
