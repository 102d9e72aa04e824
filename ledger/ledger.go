// Package ledger is the repository of election components and the home of
// every public operation on them. Each operation takes the calling
// principal explicitly, runs as one serialized storage transaction and is
// either applied completely or not at all. Events are published to
// subscribers only after the transaction has been committed.
package ledger

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vocdoni/ballotbox/log"
	"github.com/vocdoni/ballotbox/storage"
)

// Ledger holds every election, ballot, pool, token and allowance.
type Ledger struct {
	stg   *storage.Storage
	clock clock.Clock

	// writeLock spans commit and publish of a call.
	writeLock sync.Mutex

	subsLock sync.RWMutex
	subs     []func(Event)
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used for balance dates and utilization buckets.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// New creates a Ledger on top of stg.
func New(stg *storage.Storage, opts ...Option) *Ledger {
	l := &Ledger{
		stg:   stg,
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Subscribe registers fn to receive every event of committed calls, in
// commit order. fn runs synchronously on the calling goroutine before any
// other call can commit. It may read from the ledger but must not write.
func (l *Ledger) Subscribe(fn func(Event)) {
	l.subsLock.Lock()
	defer l.subsLock.Unlock()
	l.subs = append(l.subs, fn)
}

// txn is the state of one ledger call.
type txn struct {
	tx     *storage.Tx
	now    time.Time
	events []Event
}

func (t *txn) emit(e Event) {
	e.Time = t.now
	t.events = append(t.events, e)
}

// update runs fn as one atomic call. The clock is read once per call.
func (l *Ledger) update(fn func(t *txn) error) error {
	l.writeLock.Lock()
	defer l.writeLock.Unlock()

	var t *txn
	if err := l.stg.Update(func(tx *storage.Tx) error {
		t = &txn{tx: tx, now: l.clock.Now()}
		return fn(t)
	}); err != nil {
		return err
	}
	l.publish(t.events)
	return nil
}

// view runs fn against a read-only transaction.
func (l *Ledger) view(fn func(t *txn) error) error {
	return l.stg.View(func(tx *storage.Tx) error {
		return fn(&txn{tx: tx, now: l.clock.Now()})
	})
}

func (l *Ledger) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	l.subsLock.RLock()
	defer l.subsLock.RUnlock()
	for _, e := range events {
		log.Debugw("ledger event",
			"type", e.Type,
			"kind", e.Kind.String(),
			"entity", e.Entity.Hex(),
			"caller", e.Caller.Hex(),
		)
		for _, fn := range l.subs {
			fn(e)
		}
	}
}
