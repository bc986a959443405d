// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/jonboulle/clockwork"

	eventqueue "github.com/okian/calcutta/internal/adapters/mq/queue"
	workerpool "github.com/okian/calcutta/internal/adapters/mq/worker"
	"github.com/okian/calcutta/internal/adapters/repository"
	"github.com/okian/calcutta/internal/domain/dedupe"
	"github.com/okian/calcutta/internal/domain/model"
	"github.com/okian/calcutta/internal/domain/scoring"
	"github.com/okian/calcutta/internal/domain/standings"
	"github.com/okian/calcutta/internal/domain/types"
	"github.com/okian/calcutta/pkg/logger"
	"github.com/okian/calcutta/pkg/metrics"
)

const (
	defaultQueueSize  = 10000
	defaultDedupeSize = 50000

	modeCurrent = "current"
	modeCapped  = "capped"
)

// Service implements the API dependencies for the standings engine.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool
	clock      clockwork.Clock

	workerCount   int
	queueSize     int
	queueCapacity int
	dedupeSize    int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the pool store. Defaults to an empty MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClock sets the clock used for timestamps and latency.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// New constructs a new Service with default configuration. Read operations
// work immediately; event ingestion needs Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		clock:       clockwork.NewRealClock(),
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithLogger(s.logger.Named("store")))
	}
	return s
}

// Start creates the ingestion pipeline and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.eventQueue = q
	s.queueCapacity = q.Capacity()
	s.workerPool = workerpool.NewPool(s.workerCount, q, s.store,
		workerpool.WithLogger(s.logger),
		workerpool.WithClock(s.clock),
	)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "standings service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueCapacity", s.queueCapacity),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("pools", s.store.Count(ctx)),
	)
	return nil
}

// Stop drains queued events and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "standings service stopped")
	return nil
}

// SeenAndRecord reports whether an event id was already seen, recording it
// if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	d := s.dedup()
	if d == nil {
		return false
	}
	seen := d.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord forgets an event id so the event can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	if d := s.dedup(); d != nil {
		d.Unrecord(ctx, id)
	}
}

// Size returns the number of remembered event ids.
func (s *Service) Size() int64 {
	if d := s.dedup(); d != nil {
		return d.Size()
	}
	return 0
}

func (s *Service) dedup() dedupe.Deduper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deduper
}

// Enqueue submits a progress event for asynchronous processing. Returns
// false when the service is not running or the queue is full.
func (s *Service) Enqueue(ctx context.Context, e model.ProgressEvent) bool { //nolint:gocritic // hugeParam: event is handed to a channel by value
	s.mu.RLock()
	q, started := s.eventQueue, s.started
	s.mu.RUnlock()

	if !started {
		s.logger.Warn(ctx, "event rejected, service not started", logger.String("eventID", e.EventID))
		return false
	}
	if !q.Enqueue(ctx, e) {
		return false
	}
	metrics.RecordEventAccepted()
	s.logger.Debug(ctx, "event enqueued",
		logger.String("eventID", e.EventID),
		logger.String("pool", e.PoolID),
		logger.String("team", e.TeamID),
	)
	return true
}

// Pools lists the loaded pools.
func (s *Service) Pools(ctx context.Context) []types.PoolSummary {
	summaries := s.store.Pools(ctx)
	out := make([]types.PoolSummary, len(summaries))
	for i, p := range summaries {
		out[i] = types.PoolSummary{ID: p.ID, Name: p.Name, Entries: p.Entries, Teams: p.Teams}
	}
	return out
}

// Standings computes a pool's leaderboard. A nil round uses each entry's
// recorded total; otherwise totals are recomputed with every team's progress
// capped at round.
func (s *Service) Standings(ctx context.Context, poolID string, round *int) (types.Leaderboard, error) {
	pool, rows, err := s.compute(ctx, poolID, round)
	if err != nil {
		return types.Leaderboard{}, err
	}

	out := types.Leaderboard{
		PoolID:         pool.ID,
		Round:          round,
		ComputedAt:     s.clock.Now().UTC(),
		PoolTotalCents: pool.Payouts.Total(len(pool.Entries)),
		Standings:      make([]types.Standing, len(rows)),
	}
	for i, r := range rows {
		out.Standings[i] = toStanding(pool, r)
	}
	return out, nil
}

// EntryDetail returns one entry's standing and the teams behind its total.
func (s *Service) EntryDetail(ctx context.Context, poolID, entryID string, round *int) (types.EntryDetail, error) {
	pool, rows, err := s.compute(ctx, poolID, round)
	if err != nil {
		return types.EntryDetail{}, err
	}
	if _, ok := pool.Entry(entryID); !ok {
		metrics.RecordLookupNotFound()
		return types.EntryDetail{}, fmt.Errorf("pool %q entry %q: %w", poolID, entryID, repository.ErrEntryNotFound)
	}

	out := types.EntryDetail{PoolID: pool.ID, Round: round}
	for _, r := range rows {
		if r.EntryID == entryID {
			out.Standing = toStanding(pool, r)
			break
		}
	}

	limit := -1
	if round != nil {
		limit = *round
	}
	holdings := scoring.Holdings(pool.ScoringInput(), entryID, limit)
	out.Holdings = make([]types.Holding, len(holdings))
	for i, h := range holdings {
		team, _ := pool.Team(h.TeamID)
		out.Holdings[i] = types.Holding{
			TeamID:      h.TeamID,
			TeamName:    team.Name,
			Share:       h.Share,
			Progress:    h.Progress,
			Eliminated:  team.Eliminated,
			TeamPoints:  h.TeamPoints,
			EntryPoints: h.Points,
		}
	}
	return out, nil
}

func (s *Service) compute(ctx context.Context, poolID string, round *int) (repository.Pool, []model.Standing, error) {
	if round != nil && *round < 0 {
		return repository.Pool{}, nil, fmt.Errorf("round %d: %w", *round, ErrInvalidRound)
	}
	pool, err := s.store.Pool(ctx, poolID)
	if err != nil {
		if errors.Is(err, repository.ErrPoolNotFound) {
			metrics.RecordLookupNotFound()
		}
		return repository.Pool{}, nil, err
	}

	start := s.clock.Now()
	mode := modeCurrent
	totals := pool.RecordedTotals
	if round != nil {
		mode = modeCapped
		totals = scoring.CappedTotals(pool.ScoringInput(), *round)
	}
	rows := standings.Compute(pool.Entries, totals, pool.Payouts)

	latency := float64(s.clock.Since(start).Microseconds()) / 1000
	ties := standings.TieGroups(rows)
	metrics.RecordStandings(mode, latency, len(rows), ties, standings.PayoutTotal(rows))
	s.logger.Debug(ctx, "standings computed",
		logger.String("pool", poolID),
		logger.String("mode", mode),
		logger.Int("entries", len(rows)),
		logger.Int("tieGroups", ties),
	)
	return pool, rows, nil
}

func toStanding(pool repository.Pool, r model.Standing) types.Standing {
	e, _ := pool.Entry(r.EntryID)
	return types.Standing{
		EntryID:        r.EntryID,
		EntryName:      e.Name,
		TotalPoints:    r.TotalPoints,
		FinishPosition: r.FinishPosition,
		IsTied:         r.IsTied,
		PayoutCents:    r.PayoutCents,
		InTheMoney:     r.InTheMoney,
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"pools":       s.store.Count(ctx),
	}
	if s.started {
		stats["queueLength"] = s.eventQueue.Len(ctx)
		stats["queueCapacity"] = s.queueCapacity
		stats["seenEvents"] = s.deduper.Size()
	}
	return stats
}
