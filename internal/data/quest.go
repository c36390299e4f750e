package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// QuestDef holds the bonus data for one quest.
type QuestDef struct {
	ID uint32 `yaml:"id"`
	// Tokusei effect IDs granted once the quest is complete.
	BonusTokusei []int32 `yaml:"bonus_tokusei"`
}

// GrantsBonus reports whether completing this quest affects the quest
// bonus count.
func (d *QuestDef) GrantsBonus() bool {
	return len(d.BonusTokusei) > 0
}

// CompendiumTier grants tokusei once the compendium entry count reaches
// the tier's threshold.
type CompendiumTier struct {
	Count   uint32  `yaml:"count"`
	Tokusei []int32 `yaml:"tokusei"`
}

// QuestTable holds quest bonus definitions and compendium tiers.
type QuestTable struct {
	quests map[uint32]*QuestDef
	tiers  []*CompendiumTier
}

type questFile struct {
	Quests     []*QuestDef       `yaml:"quests"`
	Compendium []*CompendiumTier `yaml:"compendium"`
}

// Get returns a quest definition by ID, or nil.
func (t *QuestTable) Get(id uint32) *QuestDef {
	return t.quests[id]
}

// Count returns total loaded quests.
func (t *QuestTable) Count() int {
	return len(t.quests)
}

// CompendiumTokusei returns the tokusei IDs granted for a compendium
// entry count, walking every tier at or below the count.
func (t *QuestTable) CompendiumTokusei(entryCount uint32) []int32 {
	var ids []int32
	for _, tier := range t.tiers {
		if entryCount >= tier.Count {
			ids = append(ids, tier.Tokusei...)
		}
	}
	return ids
}

// LoadQuestTable loads the quest bonus YAML file.
func LoadQuestTable(path string) (*QuestTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f questFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	t := &QuestTable{quests: make(map[uint32]*QuestDef, len(f.Quests)), tiers: f.Compendium}
	for _, q := range f.Quests {
		if _, dup := t.quests[q.ID]; dup {
			return nil, fmt.Errorf("duplicate quest id %d in %s", q.ID, path)
		}
		t.quests[q.ID] = q
	}
	return t, nil
}
