package world

import (
	"github.com/google/uuid"
)

// InventorySlots is the number of slots in every item box.
const InventorySlots = 50

// DemonBoxSlots is the number of slots in the COMP demon container.
const DemonBoxSlots = 10

// EquipSlot identifies an equipment slot on a character.
type EquipSlot int

const (
	EquipSlotHead EquipSlot = iota
	EquipSlotFace
	EquipSlotNeck
	EquipSlotTop
	EquipSlotArms
	EquipSlotWeapon
	EquipSlotBottom
	EquipSlotFeet
	EquipSlotComp
	EquipSlotRing
	EquipSlotMax
)

// Persistent is any durable entity tracked by UUID: items, boxes,
// characters, demons. Persistence is driven by ChangeSets referencing
// these records, never by saving live state wholesale.
type Persistent interface {
	UUID() uuid.UUID
}

// Item is one persisted item instance. The containing box is recorded as
// a back-reference (box UUID + slot); the box holds the forward
// reference. The two must agree at every commit point — disagreement is
// legal only inside an in-flight change set.
type Item struct {
	UID       uuid.UUID
	Type      uint32 // template ID
	StackSize uint16
	BoxUID    uuid.UUID // zero when not in any box
	Slot      int8
	// Unix seconds when a rental item expires (0 = permanent).
	RentalExpiry int64
}

func (i *Item) UUID() uuid.UUID { return i.UID }

// ItemBox is a fixed-size item container (inventory, depository page).
type ItemBox struct {
	UID          uuid.UUID
	AccountUID   uuid.UUID
	CharacterUID uuid.UUID
	BoxID        int8
	Slots        [InventorySlots]uuid.UUID
}

func (b *ItemBox) UUID() uuid.UUID { return b.UID }

// FreeSlots returns the indices of empty slots, lowest first.
func (b *ItemBox) FreeSlots() []int {
	var free []int
	for i, uid := range b.Slots {
		if uid == uuid.Nil {
			free = append(free, i)
		}
	}
	return free
}

// SlotOf returns the slot index holding the given object, or -1.
func (b *ItemBox) SlotOf(uid uuid.UUID) int {
	for i, s := range b.Slots {
		if s == uid {
			return i
		}
	}
	return -1
}

// Demon is one persisted demon instance owned by an account's COMP.
type Demon struct {
	UID       uuid.UUID
	Type      uint32 // template ID
	BoxUID    uuid.UUID
	Slot      int8
	Familiar  bool
	// Reunion rank per reunion path index (12 paths).
	Reunion [12]uint8
	// Mitama reunion bonus IDs applied to this demon, in apply order.
	MitamaReunions []uint8
}

func (d *Demon) UUID() uuid.UUID { return d.UID }

// DemonBox is the fixed-size demon container.
type DemonBox struct {
	UID        uuid.UUID
	AccountUID uuid.UUID
	BoxID      int8
	Slots      [DemonBoxSlots]uuid.UUID
}

func (b *DemonBox) UUID() uuid.UUID { return b.UID }

// Character is the persisted player avatar.
type Character struct {
	UID        uuid.UUID
	AccountUID uuid.UUID
	Name       string
	// Privilege level; >0 skips interaction distance checks.
	UserLevel int32
	// Inventory item box (box 0).
	InventoryUID uuid.UUID
	// COMP demon box.
	CompUID uuid.UUID
	// Equipped item per slot (zero UUID = empty).
	Equipment [EquipSlotMax]uuid.UUID
	// Completed quest IDs.
	CompletedQuests []uint32
	// Number of compendium entries registered.
	CompendiumCount uint32
	ZoneID          uint32
	X, Y            float64
}

func (c *Character) UUID() uuid.UUID { return c.UID }

// EquippedSlotOf returns the equipment slot holding the item, or -1.
func (c *Character) EquippedSlotOf(itemUID uuid.UUID) EquipSlot {
	for s, uid := range c.Equipment {
		if uid == itemUID && uid != uuid.Nil {
			return EquipSlot(s)
		}
	}
	return -1
}
