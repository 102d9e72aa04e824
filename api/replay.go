package api

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultRequestWindow is how far the timestamp of a signed management
// request may drift from the server clock.
const DefaultRequestWindow = 5 * time.Minute

// replayGuard rejects management payloads outside the time window and
// payloads already accepted within it.
type replayGuard struct {
	clock  clock.Clock
	window time.Duration

	mu   sync.Mutex
	seen map[common.Hash]int64
}

func newReplayGuard(clk clock.Clock, window time.Duration) *replayGuard {
	return &replayGuard{
		clock:  clk,
		window: window,
		seen:   make(map[common.Hash]int64),
	}
}

// accept records payload, stamped at ts unix seconds.
func (g *replayGuard) accept(payload []byte, ts int64) error {
	now := g.clock.Now()
	sent := time.Unix(ts, 0)
	if sent.Before(now.Add(-g.window)) || sent.After(now.Add(g.window)) {
		return ErrStaleRequest.Withf("timestamp %d outside the accepted window", ts)
	}
	h := crypto.Keccak256Hash(payload)

	g.mu.Lock()
	defer g.mu.Unlock()
	oldest := now.Add(-g.window).Unix()
	for k, t := range g.seen {
		if t < oldest {
			delete(g.seen, k)
		}
	}
	if _, ok := g.seen[h]; ok {
		return ErrReplayedRequest
	}
	g.seen[h] = ts
	return nil
}
