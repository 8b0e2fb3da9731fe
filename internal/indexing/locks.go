// Package indexing implements the Indexing and Re-index use cases: reading
// a document's text/Vision JSON, dispatching it through the chunking
// engine, embedding and storing the resulting chunks, and keeping the
// relational IndexedDocument row in sync.
package indexing

import (
	"context"
	"sync"
)

// locks is a per-document mutual exclusion registry. Each document id maps
// to a buffered channel of capacity 1 holding one token, acting as a
// semaphore: acquiring the lock is a blocking receive of the token,
// releasing sends it back, following the
// same channel-as-semaphore idiom the worker pools elsewhere in this
// codebase use instead of a package-level mutex map, so acquisition
// respects context cancellation for free.
type locks struct {
	mu      sync.Mutex
	byDocID map[int64]chan struct{}
}

func newLocks() *locks {
	return &locks{byDocID: make(map[int64]chan struct{})}
}

func (l *locks) channelFor(docID int64) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.byDocID[docID]
	if !ok {
		ch = make(chan struct{}, 1)
		ch <- struct{}{}
		l.byDocID[docID] = ch
	}
	return ch
}

// acquire blocks until the lock for docID is free or ctx is cancelled. The
// returned release func must be called exactly once.
func (l *locks) acquire(ctx context.Context, docID int64) (release func(), err error) {
	ch := l.channelFor(docID)
	select {
	case <-ch:
		return func() { ch <- struct{}{} }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
