package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/ballotbox/api"
	"github.com/vocdoni/ballotbox/ledger"
)

// shutdownTimeout bounds how long Stop waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	ledger  *ledger.Ledger
	api     *api.API
	mu      sync.Mutex
	host    string
	port    int
	metrics bool
}

// NewAPI creates a new APIService instance serving l. With metrics set the
// default prometheus registry is exposed too.
func NewAPI(l *ledger.Ledger, host string, port int, metrics bool) *APIService {
	return &APIService{
		ledger:  l,
		host:    host,
		port:    port,
		metrics: metrics,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start.
func (as *APIService) Start(_ context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.api != nil {
		return fmt.Errorf("service already running")
	}
	a, err := api.New(&api.APIConfig{
		Host:    as.host,
		Port:    as.port,
		Ledger:  as.ledger,
		Metrics: as.metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	a.Start()
	as.api = a
	return nil
}

// Stop halts the API server.
func (as *APIService) Stop() error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.api == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := as.api.Stop(ctx)
	as.api = nil
	return err
}

// HostPort returns the host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	return as.host, as.port
}
