package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/amala/channel/internal/world"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrCharacterNotFound = errors.New("character not found")

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// LoadByAccount loads the account's character together with its item
// boxes, items and demons, registering every record in the registry.
// Box slot arrays are rebuilt from the item back-references. Returns the
// character and its world character ID.
func (r *CharacterRepo) LoadByAccount(ctx context.Context, reg *world.Registry, accountUID uuid.UUID) (*world.Character, int32, error) {
	var (
		c         world.Character
		worldCID  int32
		uid       string
		invUID    string
		compUID   string
		equipment []string
		quests    []int64
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT uid, name, world_cid, user_level, inventory_uid, comp_uid,
		        equipment, completed_quests, compendium_count, zone_id, x, y
		 FROM characters WHERE account_uid = $1`,
		accountUID.String()).Scan(
		&uid, &c.Name, &worldCID, &c.UserLevel, &invUID, &compUID,
		&equipment, &quests, &c.CompendiumCount, &c.ZoneID, &c.X, &c.Y)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrCharacterNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load character: %w", err)
	}

	c.AccountUID = accountUID
	if c.UID, err = uuid.Parse(uid); err != nil {
		return nil, 0, fmt.Errorf("character uid: %w", err)
	}
	c.InventoryUID = parseUID(invUID)
	c.CompUID = parseUID(compUID)
	for i, s := range equipment {
		if i >= int(world.EquipSlotMax) {
			break
		}
		c.Equipment[i] = parseUID(s)
	}
	c.CompletedQuests = make([]uint32, len(quests))
	for i, q := range quests {
		c.CompletedQuests[i] = uint32(q)
	}

	if err := r.loadItemBoxes(ctx, reg, accountUID); err != nil {
		return nil, 0, err
	}
	if err := r.loadDemonBoxes(ctx, reg, accountUID); err != nil {
		return nil, 0, err
	}

	reg.Register(&c)
	return &c, worldCID, nil
}

func (r *CharacterRepo) loadItemBoxes(ctx context.Context, reg *world.Registry, accountUID uuid.UUID) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT uid, character_uid, box_id FROM item_boxes WHERE account_uid = $1`,
		accountUID.String())
	if err != nil {
		return fmt.Errorf("load item boxes: %w", err)
	}
	defer rows.Close()

	var boxes []*world.ItemBox
	for rows.Next() {
		var (
			b       world.ItemBox
			uid     string
			charUID string
		)
		if err := rows.Scan(&uid, &charUID, &b.BoxID); err != nil {
			return fmt.Errorf("scan item box: %w", err)
		}
		b.UID = parseUID(uid)
		b.AccountUID = accountUID
		b.CharacterUID = parseUID(charUID)
		boxes = append(boxes, &b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load item boxes: %w", err)
	}

	for _, b := range boxes {
		if err := r.loadItems(ctx, reg, b); err != nil {
			return err
		}
		reg.Register(b)
	}
	return nil
}

func (r *CharacterRepo) loadItems(ctx context.Context, reg *world.Registry, box *world.ItemBox) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT uid, type, stack_size, slot, rental_expiry FROM items WHERE box_uid = $1`,
		box.UID.String())
	if err != nil {
		return fmt.Errorf("load items for box %s: %w", box.UID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it  world.Item
			uid string
		)
		if err := rows.Scan(&uid, &it.Type, &it.StackSize, &it.Slot, &it.RentalExpiry); err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		it.UID = parseUID(uid)
		it.BoxUID = box.UID
		if it.Slot >= 0 && int(it.Slot) < world.InventorySlots {
			box.Slots[it.Slot] = it.UID
		}
		item := it
		reg.Register(&item)
	}
	return rows.Err()
}

func (r *CharacterRepo) loadDemonBoxes(ctx context.Context, reg *world.Registry, accountUID uuid.UUID) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT uid, box_id FROM demon_boxes WHERE account_uid = $1`,
		accountUID.String())
	if err != nil {
		return fmt.Errorf("load demon boxes: %w", err)
	}
	defer rows.Close()

	var boxes []*world.DemonBox
	for rows.Next() {
		var (
			b   world.DemonBox
			uid string
		)
		if err := rows.Scan(&uid, &b.BoxID); err != nil {
			return fmt.Errorf("scan demon box: %w", err)
		}
		b.UID = parseUID(uid)
		b.AccountUID = accountUID
		boxes = append(boxes, &b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load demon boxes: %w", err)
	}

	for _, b := range boxes {
		if err := r.loadDemons(ctx, reg, b); err != nil {
			return err
		}
		reg.Register(b)
	}
	return nil
}

func (r *CharacterRepo) loadDemons(ctx context.Context, reg *world.Registry, box *world.DemonBox) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT uid, type, slot, familiar, reunion, mitama_reunions FROM demons WHERE box_uid = $1`,
		box.UID.String())
	if err != nil {
		return fmt.Errorf("load demons for box %s: %w", box.UID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d       world.Demon
			uid     string
			reunion []int16
			mitama  []int16
		)
		if err := rows.Scan(&uid, &d.Type, &d.Slot, &d.Familiar, &reunion, &mitama); err != nil {
			return fmt.Errorf("scan demon: %w", err)
		}
		d.UID = parseUID(uid)
		d.BoxUID = box.UID
		for i, rk := range reunion {
			if i >= len(d.Reunion) {
				break
			}
			d.Reunion[i] = uint8(rk)
		}
		d.MitamaReunions = make([]uint8, len(mitama))
		for i, m := range mitama {
			d.MitamaReunions[i] = uint8(m)
		}
		if d.Slot >= 0 && int(d.Slot) < world.DemonBoxSlots {
			box.Slots[d.Slot] = d.UID
		}
		demon := d
		reg.Register(&demon)
	}
	return rows.Err()
}

// parseUID reads a TEXT column UUID; "" means the zero UUID.
func parseUID(s string) uuid.UUID {
	if s == "" {
		return uuid.Nil
	}
	uid, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return uid
}
