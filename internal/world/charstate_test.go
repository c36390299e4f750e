package world

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amala/channel/internal/data"
	"github.com/google/uuid"
)

// testDefs loads a small definition set through the real YAML loaders.
func testDefs(t *testing.T) *data.Definitions {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"items.yaml": `
- id: 1000
  name: "Vest"
  flags: 15
  equip_slot: 3
  tokusei: [101, 102]
  fuse_bonuses:
    def: 5
- id: 1001
  name: "Helm"
  flags: 15
  equip_slot: 0
  tokusei: [103]
  fusion_gauge_stocks: 2
- id: 2000
  name: "Medicine"
  flags: 1
`,
		"devils.yaml": `
- id: 100
  name: "Pixie"
  base_demon_id: 100
- id: 900
  name: "Ara Mitama"
  base_demon_id: 900
  mitama: true
`,
		"quests.yaml": `
quests:
  - id: 10
    bonus_tokusei: [501]
  - id: 11
compendium:
  - count: 5
    tokusei: [601]
`,
		"mitama.yaml": `
types:
  900: 0
bonuses:
  - id: 0
    stat: "str"
    value: 1
`,
		"zones.yaml": `
- id: 1
  name: "Test"
`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	defs, err := data.Load(dir)
	if err != nil {
		t.Fatalf("load defs: %v", err)
	}
	return defs
}

func newTestItem(reg *Registry, itemType uint32, rentalExpiry int64) *Item {
	it := &Item{UID: uuid.New(), Type: itemType, StackSize: 1, RentalExpiry: rentalExpiry}
	reg.Register(it)
	return it
}

func TestRecalcEquipStateCollectsBonuses(t *testing.T) {
	defs := testDefs(t)
	reg := NewRegistry()

	c := &Character{UID: uuid.New()}
	vest := newTestItem(reg, 1000, 0)
	helm := newTestItem(reg, 1001, 0)
	c.Equipment[EquipSlotTop] = vest.UID
	c.Equipment[EquipSlotHead] = helm.UID

	cs := NewCharacterState(c)
	cs.RecalcEquipState(defs, reg)

	got := cs.EquipmentTokuseiIDs()
	if len(got) != 3 {
		t.Fatalf("tokusei = %v, want 3 entries", got)
	}
	if cs.FuseBonus("def") != 5 {
		t.Errorf("fuse def = %d, want 5", cs.FuseBonus("def"))
	}
	if cs.MaxFusionGaugeStocks() != 2 {
		t.Errorf("gauge stocks = %d, want 2", cs.MaxFusionGaugeStocks())
	}
}

func TestRecalcEquipStateSkipsExpiredRental(t *testing.T) {
	defs := testDefs(t)
	reg := NewRegistry()

	c := &Character{UID: uuid.New()}
	expired := newTestItem(reg, 1000, time.Now().Unix()-10)
	c.Equipment[EquipSlotTop] = expired.UID

	cs := NewCharacterState(c)
	cs.RecalcEquipState(defs, reg)

	if got := cs.EquipmentTokuseiIDs(); len(got) != 0 {
		t.Errorf("expired rental still granted tokusei: %v", got)
	}
}

func TestEquipmentExpiryGate(t *testing.T) {
	defs := testDefs(t)
	reg := NewRegistry()
	now := time.Now().Unix()

	c := &Character{UID: uuid.New()}
	rental := newTestItem(reg, 1000, now+100)
	c.Equipment[EquipSlotTop] = rental.UID

	cs := NewCharacterState(c)
	cs.RecalcEquipState(defs, reg)

	if cs.EquipmentExpired(now) {
		t.Error("gate fired before expiry")
	}
	if !cs.EquipmentExpired(now + 101) {
		t.Error("gate did not fire after expiry")
	}
}

func TestUpdateQuestStateIncremental(t *testing.T) {
	defs := testDefs(t)
	cs := NewCharacterState(&Character{UID: uuid.New()})

	if !cs.UpdateQuestState(defs, 10) {
		t.Fatal("bonus quest completion should grow the cache")
	}
	if cs.QuestBonusCount() != 1 {
		t.Errorf("bonus count = %d, want 1", cs.QuestBonusCount())
	}
	if cs.UpdateQuestState(defs, 10) {
		t.Error("repeat completion must not count twice")
	}
	if cs.UpdateQuestState(defs, 11) {
		t.Error("quest without bonuses must not grow the cache")
	}
	if got := cs.QuestBonusTokuseiIDs(); len(got) != 1 || got[0] != 501 {
		t.Errorf("bonus tokusei = %v, want [501]", got)
	}
}

func TestUpdateQuestStateFullRecount(t *testing.T) {
	defs := testDefs(t)
	c := &Character{UID: uuid.New(), CompletedQuests: []uint32{10, 11}}
	cs := NewCharacterState(c)

	if !cs.UpdateQuestState(defs, 0) {
		t.Fatal("recount from zero should report growth")
	}
	if cs.QuestBonusCount() != 1 {
		t.Errorf("bonus count = %d, want 1", cs.QuestBonusCount())
	}
}

func TestDigitalize(t *testing.T) {
	defs := testDefs(t)
	cs := NewCharacterState(&Character{UID: uuid.New()})

	demon := &Demon{UID: uuid.New(), Type: 100}
	demon.Reunion[0] = 3
	demon.Reunion[5] = 1

	st := cs.Digitalize(demon, defs)
	if st == nil {
		t.Fatal("digitalize returned nil for known demon")
	}
	if len(st.Tokusei) != 2 {
		t.Errorf("digitalize tokusei = %v, want 2 entries", st.Tokusei)
	}
	if cs.DigitalizeState() != st {
		t.Error("digitalize state not stored")
	}

	if got := cs.Digitalize(&Demon{UID: uuid.New(), Type: 9999}, defs); got != nil {
		t.Error("unknown demon type should not digitalize")
	}

	if cs.Digitalize(nil, defs) != nil {
		t.Error("ending digitalization should return nil")
	}
	if cs.DigitalizeState() != nil {
		t.Error("digitalize state not cleared")
	}
}
