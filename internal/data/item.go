package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Item flags (bitmask in the wire/table representation).
const (
	ItemFlagDiscard uint16 = 0x0001 // can be thrown away
	ItemFlagTrade   uint16 = 0x0002 // can be traded
	ItemFlagSell    uint16 = 0x0004
	ItemFlagStore   uint16 = 0x0008
)

// ItemDef holds item template data needed for game logic.
type ItemDef struct {
	ID        uint32 `yaml:"id"`
	Name      string `yaml:"name"`
	Flags     uint16 `yaml:"flags"`
	MaxStack  uint16 `yaml:"max_stack"`
	EquipSlot int8   `yaml:"equip_slot"` // -1 = not equippable

	// Tokusei effect IDs granted while the item is equipped.
	Tokusei []int32 `yaml:"tokusei"`

	// Fuse bonuses applied after base stats (stat key → adjustment).
	FuseBonuses map[string]int16 `yaml:"fuse_bonuses"`

	// Fusion gauge stocks granted while equipped.
	FusionGaugeStocks uint8 `yaml:"fusion_gauge_stocks"`

	// Rental lifetime in seconds (0 = permanent).
	RentalSeconds uint32 `yaml:"rental_seconds"`
}

// Discardable reports whether the item may be thrown away.
func (d *ItemDef) Discardable() bool {
	return d.Flags&ItemFlagDiscard != 0
}

// Tradeable reports whether the item may be staged in a trade.
func (d *ItemDef) Tradeable() bool {
	return d.Flags&ItemFlagTrade != 0
}

// ItemTable holds all item templates indexed by type ID.
type ItemTable struct {
	items map[uint32]*ItemDef
}

// Get returns an item definition by type ID, or nil if not found.
func (t *ItemTable) Get(id uint32) *ItemDef {
	return t.items[id]
}

// Count returns total loaded items.
func (t *ItemTable) Count() int {
	return len(t.items)
}

// LoadItemTable loads the item definition YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var defs []*ItemDef
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	t := &ItemTable{items: make(map[uint32]*ItemDef, len(defs))}
	for _, d := range defs {
		if _, dup := t.items[d.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d in %s", d.ID, path)
		}
		t.items[d.ID] = d
	}
	return t, nil
}
