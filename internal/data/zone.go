package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ActionDef is one scripted action entry on a spawned entity.
type ActionDef struct {
	Function string  `yaml:"function"`
	Args     []int32 `yaml:"args"`
}

// NPCSpawn places one NPC in a zone.
type NPCSpawn struct {
	DefinitionID uint32      `yaml:"id"`
	X            float64     `yaml:"x"`
	Y            float64     `yaml:"y"`
	Actions      []ActionDef `yaml:"actions"`
}

// ObjectSpawn places one interactable server object in a zone.
type ObjectSpawn struct {
	DefinitionID uint32      `yaml:"id"`
	X            float64     `yaml:"x"`
	Y            float64     `yaml:"y"`
	Actions      []ActionDef `yaml:"actions"`
}

// PlasmaSpawn places one plasma spawner with its pickable points.
type PlasmaSpawn struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Points []uint8 `yaml:"points"`
}

// ZoneDef describes the static population of one zone.
type ZoneDef struct {
	ID      uint32        `yaml:"id"`
	Name    string        `yaml:"name"`
	NPCs    []NPCSpawn    `yaml:"npcs"`
	Objects []ObjectSpawn `yaml:"objects"`
	Plasmas []PlasmaSpawn `yaml:"plasmas"`
}

// ZoneTable holds all zone definitions indexed by zone ID.
type ZoneTable struct {
	zones map[uint32]*ZoneDef
}

// Get returns a zone definition by ID, or nil if not found.
func (t *ZoneTable) Get(id uint32) *ZoneDef {
	return t.zones[id]
}

// All returns every zone definition.
func (t *ZoneTable) All() []*ZoneDef {
	out := make([]*ZoneDef, 0, len(t.zones))
	for _, z := range t.zones {
		out = append(out, z)
	}
	return out
}

// Count returns total loaded zones.
func (t *ZoneTable) Count() int {
	return len(t.zones)
}

// LoadZoneTable loads the zone population YAML file.
func LoadZoneTable(path string) (*ZoneTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var defs []*ZoneDef
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	t := &ZoneTable{zones: make(map[uint32]*ZoneDef, len(defs))}
	for _, z := range defs {
		if _, dup := t.zones[z.ID]; dup {
			return nil, fmt.Errorf("duplicate zone id %d in %s", z.ID, path)
		}
		t.zones[z.ID] = z
	}
	return t, nil
}
