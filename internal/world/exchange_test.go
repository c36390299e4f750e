package world

import (
	"testing"

	"github.com/google/uuid"
)

func TestExchangeSetItemRange(t *testing.T) {
	ex := NewExchangeSession(ExchangeTrade, nil)
	if ex.SetItem(-1, uuid.New()) {
		t.Error("negative slot accepted")
	}
	if ex.SetItem(ExchangeSlots, uuid.New()) {
		t.Error("out-of-range slot accepted")
	}
	if !ex.SetItem(0, uuid.New()) {
		t.Error("valid slot rejected")
	}
}

func TestExchangeItemsSkipEmptySlots(t *testing.T) {
	ex := NewExchangeSession(ExchangeTrade, nil)
	a, b := uuid.New(), uuid.New()
	ex.SetItem(3, a)
	ex.SetItem(17, b)

	items := ex.Items()
	if len(items) != 2 {
		t.Fatalf("Items = %d entries, want 2", len(items))
	}
	if !ex.Contains(a) || !ex.Contains(b) {
		t.Error("staged items not reported by Contains")
	}

	// Unstage with the zero UUID.
	ex.SetItem(3, uuid.Nil)
	if len(ex.Items()) != 1 {
		t.Error("unstaged item still listed")
	}
	if ex.Contains(a) {
		t.Error("unstaged item still contained")
	}
}

func TestExchangeFinishedFlag(t *testing.T) {
	ex := NewExchangeSession(ExchangeTrade, nil)
	if ex.Finished() {
		t.Error("fresh session already finished")
	}
	ex.SetFinished(true)
	if !ex.Finished() {
		t.Error("finished flag not set")
	}
	ex.SetFinished(false)
	if ex.Finished() {
		t.Error("finished flag not cleared")
	}
}
