package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vocdoni/ballotbox/ledger"
	"github.com/vocdoni/ballotbox/log"
)

const (
	metricsNamespace = "ballotbox"
	// eventBuffer is the number of ledger events queued for the metrics
	// loop before new ones are dropped.
	eventBuffer = 1024
)

// Metrics exports ledger activity as prometheus metrics. Events are
// received from the ledger subscription and processed on their own
// goroutine, so a slow scrape never delays a ledger call.
type Metrics struct {
	events chan ledger.Event

	votes       *prometheus.CounterVec
	spent       prometheus.Counter
	deducted    prometheus.Counter
	minted      prometheus.Counter
	transitions *prometheus.CounterVec
	created     *prometheus.CounterVec
	keys        *prometheus.CounterVec
	dropped     prometheus.Counter

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMetrics registers the ledger metrics on reg and subscribes to l.
func NewMetrics(l *ledger.Ledger, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: make(chan ledger.Event, eventBuffer),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "votes_total",
			Help:      "Votes accepted by pools, by operation",
		}, []string{"op"}),
		spent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_votes_spent_total",
			Help:      "Voting rights spent from vote tokens",
		}),
		deducted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "allowance_votes_deducted_total",
			Help:      "Voting rights deducted from allowances",
		}),
		minted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_mints_total",
			Help:      "Mint operations on vote tokens",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "phase_transitions_total",
			Help:      "Lifecycle transitions, by component kind and target phase",
		}, []string{"kind", "phase"}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "entities_created_total",
			Help:      "Components created, by kind",
		}, []string{"kind"}),
		keys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "election_keys_total",
			Help:      "Election keys stored, by key",
		}, []string{"key"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "metrics_events_dropped_total",
			Help:      "Ledger events not accounted because the queue was full",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.votes, m.spent, m.deducted, m.minted, m.transitions, m.created, m.keys, m.dropped,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	l.Subscribe(m.enqueue)
	return m, nil
}

func (m *Metrics) enqueue(e ledger.Event) {
	select {
	case m.events <- e:
	default:
		m.dropped.Inc()
	}
}

// Start begins processing ledger events. It returns an error if the service
// is already running.
func (m *Metrics) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return fmt.Errorf("service already running")
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.loop(ctx, m.done)
	return nil
}

// Stop halts event processing. Queued events stay queued.
func (m *Metrics) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		<-m.done
		m.cancel = nil
	}
}

func (m *Metrics) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-m.events:
			m.observe(e)
		}
	}
}

func (m *Metrics) observe(e ledger.Event) {
	switch e.Type {
	case ledger.EventVoteCast:
		m.votes.WithLabelValues("cast").Inc()
	case ledger.EventVoteUpdated:
		m.votes.WithLabelValues("update").Inc()
	case ledger.EventVoteSpent:
		m.spent.Inc()
	case ledger.EventVotesDeducted:
		m.deducted.Inc()
	case ledger.EventMinted:
		m.minted.Inc()
	case ledger.EventCreated:
		m.created.WithLabelValues(e.Kind.String()).Inc()
	case ledger.EventPhaseChanged:
		m.transitions.WithLabelValues(e.Kind.String(), e.Phase.String()).Inc()
		log.Infow("phase changed", "kind", e.Kind.String(), "entity", e.Entity.Hex(), "phase", e.Phase.String())
	case ledger.EventKeyPublished:
		m.keys.WithLabelValues("public").Inc()
	case ledger.EventKeyReleased:
		m.keys.WithLabelValues("private").Inc()
	}
}
