package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MitamaBonus describes the reinforcement granted by one mitama reunion
// bonus ID. Bonus IDs are 32*mitamaIndex + roll.
type MitamaBonus struct {
	ID    uint8  `yaml:"id"`
	Stat  string `yaml:"stat"`
	Value int16  `yaml:"value"`
}

// MitamaTable maps mitama demon types to their reunion index and bonus
// grid entries.
type MitamaTable struct {
	// base demon ID → mitama index (0-3)
	types map[uint32]uint8
	// bonus ID → bonus definition
	bonuses map[uint8]*MitamaBonus
}

type mitamaFile struct {
	Types   map[uint32]uint8 `yaml:"types"`
	Bonuses []*MitamaBonus   `yaml:"bonuses"`
}

// Index returns the mitama index for a base demon ID. The second return
// is false when the demon is not a mitama type.
func (t *MitamaTable) Index(baseDemonID uint32) (uint8, bool) {
	idx, ok := t.types[baseDemonID]
	return idx, ok
}

// Bonus returns the bonus definition for a bonus ID, or nil.
func (t *MitamaTable) Bonus(id uint8) *MitamaBonus {
	return t.bonuses[id]
}

// BonusCountFor returns how many bonus rolls exist for a mitama index.
func (t *MitamaTable) BonusCountFor(mitamaIdx uint8) int {
	n := 0
	for id := range t.bonuses {
		if id/32 == mitamaIdx {
			n++
		}
	}
	return n
}

// LoadMitamaTable loads the mitama reunion YAML file.
func LoadMitamaTable(path string) (*MitamaTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f mitamaFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	t := &MitamaTable{
		types:   f.Types,
		bonuses: make(map[uint8]*MitamaBonus, len(f.Bonuses)),
	}
	if t.types == nil {
		t.types = map[uint32]uint8{}
	}
	for _, b := range f.Bonuses {
		if _, dup := t.bonuses[b.ID]; dup {
			return nil, fmt.Errorf("duplicate mitama bonus id %d in %s", b.ID, path)
		}
		t.bonuses[b.ID] = b
	}
	return t, nil
}
