package packet

import (
	"testing"

	"go.uber.org/zap"
)

func TestDispatchUnknownOpcodeIgnored(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if err := reg.Dispatch(nil, StateInWorld, payload(0x7777)); err != nil {
		t.Fatalf("unknown opcode should be ignored, got %v", err)
	}
}

func TestDispatchShortPacket(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if err := reg.Dispatch(nil, StateInWorld, []byte{0x01}); err == nil {
		t.Fatal("short packet should error")
	}
}

func TestDispatchStateGate(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	called := false
	reg.Register(0x0010, []SessionState{StateInWorld}, func(sess any, r *Reader) bool {
		called = true
		return true
	})

	if err := reg.Dispatch(nil, StateHandshake, payload(0x0010)); err == nil {
		t.Fatal("disallowed state should error")
	}
	if called {
		t.Fatal("handler must not run in disallowed state")
	}
	if err := reg.Dispatch(nil, StateInWorld, payload(0x0010)); err != nil {
		t.Fatalf("allowed state errored: %v", err)
	}
	if !called {
		t.Fatal("handler did not run in allowed state")
	}
}

func TestDispatchParseRejectionErrors(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(0x0011, []SessionState{StateInWorld}, func(sess any, r *Reader) bool {
		return false
	})
	if err := reg.Dispatch(nil, StateInWorld, payload(0x0011)); err == nil {
		t.Fatal("handler returning false should surface an error")
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(0x0012, []SessionState{StateInWorld}, func(sess any, r *Reader) bool {
		panic("boom")
	})
	if err := reg.Dispatch(nil, StateInWorld, payload(0x0012)); err == nil {
		t.Fatal("panicking handler should surface an error")
	}
}
