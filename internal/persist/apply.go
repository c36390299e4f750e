package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/amala/channel/internal/world"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ProcessChangeSet applies every entry of the set in one transaction,
// then records an attribution row. Any failure rolls back the whole set.
func (db *DB) ProcessChangeSet(ctx context.Context, cs *ChangeSet) error {
	if cs.Empty() {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin changeset tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, e := range cs.Entries {
		if err := applyEntry(ctx, tx, e); err != nil {
			return fmt.Errorf("changeset entry %d (%s): %w", i, e.Op, err)
		}
	}

	ins, upd, del := cs.Counts()
	_, err = tx.Exec(ctx,
		`INSERT INTO changeset_audit (account_uid, inserts, updates, deletes) VALUES ($1, $2, $3, $4)`,
		uidText(cs.AccountUID), ins, upd, del)
	if err != nil {
		return fmt.Errorf("changeset audit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit changeset: %w", err)
	}
	return nil
}

func applyEntry(ctx context.Context, tx pgx.Tx, e Entry) error {
	switch rec := e.Record.(type) {
	case *world.Item:
		return applyItem(ctx, tx, e.Op, rec)
	case *world.ItemBox:
		return applyItemBox(ctx, tx, e.Op, rec)
	case *world.Demon:
		return applyDemon(ctx, tx, e.Op, rec)
	case *world.DemonBox:
		return applyDemonBox(ctx, tx, e.Op, rec)
	case *world.Character:
		return applyCharacter(ctx, tx, e.Op, rec)
	default:
		return fmt.Errorf("unsupported record type %T", e.Record)
	}
}

func applyItem(ctx context.Context, tx pgx.Tx, op Op, it *world.Item) error {
	switch op {
	case OpInsert:
		_, err := tx.Exec(ctx,
			`INSERT INTO items (uid, type, stack_size, box_uid, slot, rental_expiry)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uidText(it.UID), int64(it.Type), int32(it.StackSize), uidText(it.BoxUID), int16(it.Slot), it.RentalExpiry)
		return err
	case OpUpdate:
		tag, err := tx.Exec(ctx,
			`UPDATE items SET type = $2, stack_size = $3, box_uid = $4, slot = $5, rental_expiry = $6
			 WHERE uid = $1`,
			uidText(it.UID), int64(it.Type), int32(it.StackSize), uidText(it.BoxUID), int16(it.Slot), it.RentalExpiry)
		if err == nil && tag.RowsAffected() == 0 {
			return fmt.Errorf("item %s not found", it.UID)
		}
		return err
	case OpDelete:
		_, err := tx.Exec(ctx, `DELETE FROM items WHERE uid = $1`, uidText(it.UID))
		return err
	}
	return fmt.Errorf("unknown op %d", op)
}

func applyItemBox(ctx context.Context, tx pgx.Tx, op Op, b *world.ItemBox) error {
	switch op {
	case OpInsert:
		_, err := tx.Exec(ctx,
			`INSERT INTO item_boxes (uid, account_uid, character_uid, box_id)
			 VALUES ($1, $2, $3, $4)`,
			uidText(b.UID), uidText(b.AccountUID), uidText(b.CharacterUID), int16(b.BoxID))
		return err
	case OpUpdate:
		// Slot contents live on the items as back-references; the box row
		// itself only carries identity and ownership.
		tag, err := tx.Exec(ctx,
			`UPDATE item_boxes SET account_uid = $2, character_uid = $3, box_id = $4 WHERE uid = $1`,
			uidText(b.UID), uidText(b.AccountUID), uidText(b.CharacterUID), int16(b.BoxID))
		if err == nil && tag.RowsAffected() == 0 {
			return fmt.Errorf("item box %s not found", b.UID)
		}
		return err
	case OpDelete:
		_, err := tx.Exec(ctx, `DELETE FROM item_boxes WHERE uid = $1`, uidText(b.UID))
		return err
	}
	return fmt.Errorf("unknown op %d", op)
}

func applyDemon(ctx context.Context, tx pgx.Tx, op Op, d *world.Demon) error {
	reunion := make([]int16, len(d.Reunion))
	for i, r := range d.Reunion {
		reunion[i] = int16(r)
	}
	mitama := make([]int16, len(d.MitamaReunions))
	for i, m := range d.MitamaReunions {
		mitama[i] = int16(m)
	}
	switch op {
	case OpInsert:
		_, err := tx.Exec(ctx,
			`INSERT INTO demons (uid, type, box_uid, slot, familiar, reunion, mitama_reunions)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uidText(d.UID), int64(d.Type), uidText(d.BoxUID), int16(d.Slot), d.Familiar, reunion, mitama)
		return err
	case OpUpdate:
		tag, err := tx.Exec(ctx,
			`UPDATE demons SET type = $2, box_uid = $3, slot = $4, familiar = $5, reunion = $6, mitama_reunions = $7
			 WHERE uid = $1`,
			uidText(d.UID), int64(d.Type), uidText(d.BoxUID), int16(d.Slot), d.Familiar, reunion, mitama)
		if err == nil && tag.RowsAffected() == 0 {
			return fmt.Errorf("demon %s not found", d.UID)
		}
		return err
	case OpDelete:
		_, err := tx.Exec(ctx, `DELETE FROM demons WHERE uid = $1`, uidText(d.UID))
		return err
	}
	return fmt.Errorf("unknown op %d", op)
}

func applyDemonBox(ctx context.Context, tx pgx.Tx, op Op, b *world.DemonBox) error {
	switch op {
	case OpInsert:
		_, err := tx.Exec(ctx,
			`INSERT INTO demon_boxes (uid, account_uid, box_id) VALUES ($1, $2, $3)`,
			uidText(b.UID), uidText(b.AccountUID), int16(b.BoxID))
		return err
	case OpUpdate:
		tag, err := tx.Exec(ctx,
			`UPDATE demon_boxes SET account_uid = $2, box_id = $3 WHERE uid = $1`,
			uidText(b.UID), uidText(b.AccountUID), int16(b.BoxID))
		if err == nil && tag.RowsAffected() == 0 {
			return fmt.Errorf("demon box %s not found", b.UID)
		}
		return err
	case OpDelete:
		_, err := tx.Exec(ctx, `DELETE FROM demon_boxes WHERE uid = $1`, uidText(b.UID))
		return err
	}
	return fmt.Errorf("unknown op %d", op)
}

func applyCharacter(ctx context.Context, tx pgx.Tx, op Op, c *world.Character) error {
	equipment := make([]string, len(c.Equipment))
	for i, uid := range c.Equipment {
		equipment[i] = uidText(uid)
	}
	quests := make([]int64, len(c.CompletedQuests))
	for i, q := range c.CompletedQuests {
		quests[i] = int64(q)
	}
	switch op {
	case OpUpdate:
		tag, err := tx.Exec(ctx,
			`UPDATE characters SET user_level = $2, inventory_uid = $3, comp_uid = $4,
			        equipment = $5, completed_quests = $6, compendium_count = $7,
			        zone_id = $8, x = $9, y = $10
			 WHERE uid = $1`,
			uidText(c.UID), c.UserLevel, uidText(c.InventoryUID), uidText(c.CompUID),
			equipment, quests, int64(c.CompendiumCount), int64(c.ZoneID), c.X, c.Y)
		if err == nil && tag.RowsAffected() == 0 {
			return fmt.Errorf("character %s not found", c.UID)
		}
		return err
	case OpDelete:
		_, err := tx.Exec(ctx, `DELETE FROM characters WHERE uid = $1`, uidText(c.UID))
		return err
	case OpInsert:
		return fmt.Errorf("character insert not supported via changeset")
	}
	return fmt.Errorf("unknown op %d", op)
}

// uidText renders a UUID for a TEXT column; the zero UUID becomes "".
func uidText(uid uuid.UUID) string {
	if uid == uuid.Nil {
		return ""
	}
	return uid.String()
}

// Saver drains queued change sets on a background goroutine. It wraps a
// DB and implements Store: the synchronous path passes through, the
// queued path is applied in submission order per saver.
type Saver struct {
	db    *DB
	queue chan *ChangeSet
	done  chan struct{}
	log   *zap.Logger
}

func NewSaver(db *DB, queueSize int, log *zap.Logger) *Saver {
	s := &Saver{
		db:    db,
		queue: make(chan *ChangeSet, queueSize),
		done:  make(chan struct{}),
		log:   log,
	}
	go s.run()
	return s
}

func (s *Saver) ProcessChangeSet(ctx context.Context, cs *ChangeSet) error {
	return s.db.ProcessChangeSet(ctx, cs)
}

// QueueChangeSet hands the set to the background saver. Blocks if the
// queue is full rather than dropping durable state.
func (s *Saver) QueueChangeSet(cs *ChangeSet) {
	if cs == nil || cs.Empty() {
		return
	}
	s.queue <- cs
}

// Stop drains the queue and waits for the saver goroutine to exit.
func (s *Saver) Stop() {
	close(s.queue)
	<-s.done
}

func (s *Saver) run() {
	defer close(s.done)
	for cs := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := s.db.ProcessChangeSet(ctx, cs)
		cancel()
		if err != nil {
			s.log.Error("queued changeset failed",
				zap.String("account", cs.AccountUID.String()),
				zap.Int("entries", len(cs.Entries)),
				zap.Error(err))
		}
	}
}
