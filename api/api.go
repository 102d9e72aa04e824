package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vocdoni/ballotbox/ledger"
	"github.com/vocdoni/ballotbox/log"
)

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host   string
	Port   int
	Ledger *ledger.Ledger
	// Metrics exposes the default prometheus registry under MetricsEndpoint.
	Metrics bool
	// Clock checks management request timestamps. Defaults to the wall
	// clock.
	Clock clock.Clock
	// RequestWindow bounds the age of management requests. Defaults to
	// DefaultRequestWindow.
	RequestWindow time.Duration
}

// API type represents the HTTP front of a ledger. Reads are open, writes
// must be signed by the calling principal.
type API struct {
	router *chi.Mux
	ledger *ledger.Ledger
	server *http.Server
	conf   APIConfig
	replay *replayGuard
}

// New creates a new API instance with the given configuration. The server
// is not started, see Start.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Ledger == nil {
		return nil, fmt.Errorf("missing ledger instance")
	}
	clk := conf.Clock
	if clk == nil {
		clk = clock.New()
	}
	window := conf.RequestWindow
	if window <= 0 {
		window = DefaultRequestWindow
	}
	a := &API{
		ledger: conf.Ledger,
		conf:   *conf,
		replay: newReplayGuard(clk, window),
	}
	a.initRouter()
	return a, nil
}

// Start serves the API in the background until Stop is called.
func (a *API) Start() {
	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.conf.Host, a.conf.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := a.server
	go func() {
		log.Infow("starting API server", "host", a.conf.Host, "port", a.conf.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("API server failed: %v", err)
		}
	}()
}

// Stop shuts the server down, waiting for in-flight requests until ctx is
// done.
func (a *API) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	err := a.server.Shutdown(ctx)
	a.server = nil
	return err
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

type route struct {
	method, path string
	handler      http.HandlerFunc
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	routes := []route{
		{http.MethodGet, PingEndpoint, func(w http.ResponseWriter, _ *http.Request) { httpWriteOK(w) }},
		// any entity
		{http.MethodGet, EntityEndpoint, a.entity},
		{http.MethodPost, EntityPhaseEndpoint, a.setPhase},
		{http.MethodPost, EntityAdminsEndpoint, a.setAdmin},
		{http.MethodPost, EntityAuthorizedEndpoint, a.setAuthorized},
		{http.MethodPost, EntityLockEndpoint, a.setLock},
		// elections
		{http.MethodPost, ElectionsEndpoint, a.createElection},
		{http.MethodGet, ElectionEndpoint, a.election},
		{http.MethodPost, ElectionKeysEndpoint, a.setElectionKeys},
		{http.MethodPost, ElectionBallotsEndpoint, a.electionBallot},
		{http.MethodPost, ElectionPoolsEndpoint, a.electionPool},
		{http.MethodPost, ElectionVoteOwnerEndpoint, a.setVoteOwner},
		{http.MethodPost, ElectionWithdrawEndpoint, a.withdrawVotes},
		// ballots
		{http.MethodPost, BallotsEndpoint, a.createBallot},
		{http.MethodGet, BallotEndpoint, a.ballot},
		{http.MethodPost, BallotGroupsEndpoint, a.ballotGroup},
		{http.MethodPost, BallotPoolsEndpoint, a.ballotPool},
		{http.MethodGet, BallotGroupVotesEndpoint, a.groupVotes},
		// pools
		{http.MethodPost, PoolsEndpoint, a.createPool},
		{http.MethodGet, PoolEndpoint, a.pool},
		{http.MethodGet, PoolCheckEndpoint, a.checkPool},
		{http.MethodPost, PoolBallotsEndpoint, a.poolBallot},
		{http.MethodPost, PoolAuthEndpoint, a.poolAuth},
		{http.MethodPost, PoolVotesEndpoint, a.castVote},
		{http.MethodPut, PoolVotesEndpoint, a.updateVote},
		{http.MethodGet, PoolVoteEndpoint, a.vote},
		{http.MethodGet, PoolRootEndpoint, a.votesRoot},
		// tokens
		{http.MethodPost, TokensEndpoint, a.createToken},
		{http.MethodGet, TokenEndpoint, a.token},
		{http.MethodPost, TokenMintEndpoint, a.mint},
		{http.MethodPost, TokenTransferEndpoint, a.transfer},
		{http.MethodPost, TokenMintersEndpoint, a.tokenMinter},
		{http.MethodPost, TokenElectionsEndpoint, a.tokenElection},
		{http.MethodPost, TokenGranularityEndpoint, a.setGranularity},
		{http.MethodGet, TokenBalanceEndpoint, a.balance},
		{http.MethodGet, TokenUtilizationEndpoint, a.utilization},
		// allowances
		{http.MethodPost, AllowancesEndpoint, a.createAllowance},
		{http.MethodPost, AllowanceVotesEndpoint, a.addAllowanceVotes},
		{http.MethodPost, AllowanceElectionsEndpoint, a.allowanceElection},
		{http.MethodGet, AllowanceAccountEndpoint, a.allowanceAccount},
	}
	for _, r := range routes {
		log.Infow("register handler", "endpoint", r.path, "method", r.method)
		a.router.Method(r.method, r.path, r.handler)
	}
	if a.conf.Metrics {
		log.Infow("register handler", "endpoint", MetricsEndpoint, "method", "GET")
		a.router.Method(http.MethodGet, MetricsEndpoint, promhttp.Handler())
	}
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))
	a.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		ErrResourceNotFound.Write(w)
	})
	a.registerHandlers()
}
