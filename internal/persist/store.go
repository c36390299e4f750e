package persist

import "context"

// Store applies change sets to durable storage. ProcessChangeSet is the
// synchronous path for operations whose success reply must not outrun
// the commit; QueueChangeSet hands the set to a background saver and
// returns immediately.
type Store interface {
	ProcessChangeSet(ctx context.Context, cs *ChangeSet) error
	QueueChangeSet(cs *ChangeSet)
}
