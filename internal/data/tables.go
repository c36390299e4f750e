// Package data loads the read-only definition tables the channel consumes:
// item templates, demon templates, quest bonuses, and mitama reunion
// bonuses. Tables are YAML files keyed by numeric type IDs and are
// immutable after load.
package data

import (
	"path/filepath"
)

// Definitions aggregates every definition table.
type Definitions struct {
	Items  *ItemTable
	Devils *DevilTable
	Quests *QuestTable
	Mitama *MitamaTable
	Zones  *ZoneTable
}

// Load reads all definition tables from a directory.
func Load(dir string) (*Definitions, error) {
	items, err := LoadItemTable(filepath.Join(dir, "items.yaml"))
	if err != nil {
		return nil, err
	}
	devils, err := LoadDevilTable(filepath.Join(dir, "devils.yaml"))
	if err != nil {
		return nil, err
	}
	quests, err := LoadQuestTable(filepath.Join(dir, "quests.yaml"))
	if err != nil {
		return nil, err
	}
	mitama, err := LoadMitamaTable(filepath.Join(dir, "mitama.yaml"))
	if err != nil {
		return nil, err
	}
	zones, err := LoadZoneTable(filepath.Join(dir, "zones.yaml"))
	if err != nil {
		return nil, err
	}
	return &Definitions{
		Items:  items,
		Devils: devils,
		Quests: quests,
		Mitama: mitama,
		Zones:  zones,
	}, nil
}
