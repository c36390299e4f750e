package persist

import (
	"github.com/amala/channel/internal/world"
	"github.com/google/uuid"
)

// Op is the kind of a change set entry.
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Entry is one record operation inside a change set.
type Entry struct {
	Op     Op
	Record world.Persistent
}

// ChangeSet is an ordered batch of record operations attributed to one
// account. A set is applied atomically: either every entry commits or
// none do. Entries reference live records; callers must not mutate a
// record after queueing a set that includes it until the set is applied.
type ChangeSet struct {
	AccountUID uuid.UUID
	Entries    []Entry
}

func NewChangeSet(accountUID uuid.UUID) *ChangeSet {
	return &ChangeSet{AccountUID: accountUID}
}

func (cs *ChangeSet) Insert(rec world.Persistent) {
	cs.Entries = append(cs.Entries, Entry{Op: OpInsert, Record: rec})
}

func (cs *ChangeSet) Update(rec world.Persistent) {
	cs.Entries = append(cs.Entries, Entry{Op: OpUpdate, Record: rec})
}

func (cs *ChangeSet) Delete(rec world.Persistent) {
	cs.Entries = append(cs.Entries, Entry{Op: OpDelete, Record: rec})
}

// Empty reports whether the set holds no entries.
func (cs *ChangeSet) Empty() bool { return len(cs.Entries) == 0 }

// Counts returns the number of insert, update and delete entries.
func (cs *ChangeSet) Counts() (inserts, updates, deletes int) {
	for _, e := range cs.Entries {
		switch e.Op {
		case OpInsert:
			inserts++
		case OpUpdate:
			updates++
		case OpDelete:
			deletes++
		}
	}
	return
}
