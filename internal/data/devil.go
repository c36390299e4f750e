package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DevilDef holds demon template data.
type DevilDef struct {
	ID          uint32 `yaml:"id"`
	Name        string `yaml:"name"`
	BaseDemonID uint32 `yaml:"base_demon_id"`
	Mitama      bool   `yaml:"mitama"`
	Level       int8   `yaml:"level"`
}

// DevilTable holds all demon templates indexed by type ID.
type DevilTable struct {
	devils map[uint32]*DevilDef
}

// Get returns a demon definition by type ID, or nil if not found.
func (t *DevilTable) Get(id uint32) *DevilDef {
	return t.devils[id]
}

// Count returns total loaded demons.
func (t *DevilTable) Count() int {
	return len(t.devils)
}

// LoadDevilTable loads the demon definition YAML file.
func LoadDevilTable(path string) (*DevilTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var defs []*DevilDef
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	t := &DevilTable{devils: make(map[uint32]*DevilDef, len(defs))}
	for _, d := range defs {
		if _, dup := t.devils[d.ID]; dup {
			return nil, fmt.Errorf("duplicate devil id %d in %s", d.ID, path)
		}
		t.devils[d.ID] = d
	}
	return t, nil
}
