// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/pumptrack/pumptrack/internal/adapters/dispatch"
	"github.com/pumptrack/pumptrack/internal/adapters/fetch"
	"github.com/pumptrack/pumptrack/internal/adapters/snapshot"
	"github.com/pumptrack/pumptrack/internal/domain/model"
	"github.com/pumptrack/pumptrack/internal/domain/pipeline"
	"github.com/pumptrack/pumptrack/internal/domain/rankchange"
	"github.com/pumptrack/pumptrack/pkg/logger"
	"github.com/pumptrack/pumptrack/pkg/metrics"
)

// Fetcher retrieves one raw snapshot from the backend.
type Fetcher interface {
	Fetch(ctx context.Context) (*model.RawData, error)
}

// Service owns the processing loop: fetch, process, track changes,
// publish. The published state is rebuilt from scratch every run and
// swapped in atomically; readers never see a half-updated state.
type Service struct {
	mu sync.RWMutex

	// Core components
	fetcher    Fetcher
	processor  *pipeline.Processor
	tracker    *rankchange.Tracker
	store      rankchange.Store
	dispatcher *dispatch.Dispatcher

	// Published state
	current *pipeline.Snapshot
	lastRun time.Time

	// Configuration
	backendURL      string
	fetchTimeout    time.Duration
	refreshInterval time.Duration
	queueSize       int
	inline          bool
	schema          string
	debugRating     bool

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBackendURL sets the recognition backend base URL.
func WithBackendURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.backendURL = url
		}
	}
}

// WithFetchTimeout bounds one backend snapshot fetch.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.fetchTimeout = timeout
		}
	}
}

// WithFetcher replaces the backend client.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithSnapshotStore sets the store for ranking snapshots.
func WithSnapshotStore(store rankchange.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSnapshotSchema sets the snapshot schema version.
func WithSnapshotSchema(schema string) Option {
	return func(s *Service) {
		if schema != "" {
			s.schema = schema
		}
	}
}

// WithRefreshInterval schedules automatic refresh runs. Zero disables
// the scheduler.
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval >= 0 {
			s.refreshInterval = interval
		}
	}
}

// WithQueueSize sets the maximum size of the refresh request queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithInlineProcessing makes Refresh execute runs synchronously
// instead of queuing them.
func WithInlineProcessing(inline bool) Option {
	return func(s *Service) {
		s.inline = inline
	}
}

// WithDebugRating enables the battle replay debug log.
func WithDebugRating(debug bool) Option {
	return func(s *Service) {
		s.debugRating = debug
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

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		backendURL:      "http://localhost:3010",
		fetchTimeout:    2 * time.Minute,
		refreshInterval: 10 * time.Minute,
		queueSize:       16,
		schema:          rankchange.DefaultSchema,
		stopCh:          make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components, triggers an initial
// refresh and launches the scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.started {
		s.mu.Unlock()
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting score tracking service...")

	if s.fetcher == nil {
		s.fetcher = fetch.New(s.backendURL,
			fetch.WithTimeout(s.fetchTimeout),
			fetch.WithLogger(s.logger),
		)
	}
	if s.store == nil {
		s.store = snapshot.NewMemory()
		s.logger.Info(ctx, "using in-memory snapshot store")
	}
	s.tracker = rankchange.New(s.store,
		rankchange.WithSchema(s.schema),
		rankchange.WithLogger(s.logger),
	)
	s.processor = pipeline.New(
		pipeline.WithLogger(s.logger),
		pipeline.WithDebug(s.debugRating),
	)

	s.dispatcher = dispatch.New(s.runOnce,
		dispatch.WithCapacity(s.queueSize),
		dispatch.WithInline(s.inline),
		dispatch.WithLogger(s.logger),
	)
	s.dispatcher.Start(ctx)

	s.started = true
	// The initial run must happen outside the lock: an inline dispatcher
	// executes runOnce on this goroutine, and runOnce publishes under it.
	s.mu.Unlock()

	if _, err := s.dispatcher.Trigger(ctx); err != nil {
		s.logger.Warn(ctx, "initial refresh not queued", logger.Error(err))
	}
	if s.refreshInterval > 0 {
		go s.schedule(ctx)
	}

	s.logger.Info(ctx, "score tracking service started",
		logger.String("backend", s.backendURL),
		logger.Duration("refreshInterval", s.refreshInterval),
		logger.Int("queueSize", s.queueSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping score tracking service...")

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Close()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "score tracking service stopped")
}

// schedule queues a refresh every interval until the service stops.
func (s *Service) schedule(ctx context.Context) {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.dispatcher.Trigger(ctx); err != nil {
				s.logger.Warn(ctx, "scheduled refresh not queued", logger.Error(err))
			}
		}
	}
}

// Refresh queues a refresh run and returns its id.
func (s *Service) Refresh(ctx context.Context) (string, error) {
	return s.dispatcher.Trigger(ctx)
}

// runOnce executes one full refresh: fetch, process, annotate,
// publish. A failed run leaves the previously published state intact.
func (s *Service) runOnce(ctx context.Context, req dispatch.Request) error {
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	data, err := s.fetcher.Fetch(fetchCtx)
	if err != nil {
		metrics.RecordRunFailure()
		return err
	}

	snap, err := s.processor.Process(ctx, data)
	if err != nil {
		metrics.RecordRunFailure()
		return err
	}

	s.tracker.Apply(ctx, snap.Ranking)

	s.mu.Lock()
	s.current = snap
	s.lastRun = time.Now()
	s.mu.Unlock()

	metrics.RecordRun()
	metrics.RecordRunDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdateLastRunUnix(time.Now().Unix())
	metrics.UpdateChartsTracked(len(snap.Charts))
	metrics.UpdateResultsProcessed(snap.ResultCount)
	metrics.UpdateBattlesReplayed(snap.BattleCount)
	metrics.UpdateProfilesTracked(len(snap.Profiles))
	metrics.UpdateRankedPlayers(len(snap.Ranking))
	metrics.UpdateResultsSkipped(snap.Skipped)

	s.logger.Info(ctx, "published new state",
		logger.String("run_id", req.ID),
		logger.Int("charts", len(snap.Charts)),
		logger.Int("ranked", len(snap.Ranking)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Snapshot returns the currently published state, or nil before the
// first successful run.
func (s *Service) Snapshot(ctx context.Context) *pipeline.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Ranking returns the published ranking.
func (s *Service) Ranking(ctx context.Context) []model.RankingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	return s.current.Ranking
}

// Chart returns one chart with its leaderboard.
func (s *Service) Chart(ctx context.Context, sharedChartID string) (*model.Chart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	chart, ok := s.current.Charts[sharedChartID]
	return chart, ok
}

// Charts returns all charts in first-seen order.
func (s *Service) Charts(ctx context.Context) []*model.Chart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	charts := make([]*model.Chart, 0, len(s.current.ChartOrder))
	for _, id := range s.current.ChartOrder {
		charts = append(charts, s.current.Charts[id])
	}
	return charts
}

// Profile returns one player profile.
func (s *Service) Profile(ctx context.Context, playerID string) (*model.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	p, ok := s.current.Profiles[playerID]
	return p, ok
}

// ScoreInfo returns the per-result rating audit.
func (s *Service) ScoreInfo(ctx context.Context) map[string]*model.ScoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	return s.current.ScoreInfo
}

// LogText returns the replay debug log from the last run; empty unless
// debug is enabled.
func (s *Service) LogText(ctx context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.LogText
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"backendURL":      s.backendURL,
		"refreshInterval": s.refreshInterval.String(),
		"queueSize":       s.queueSize,
	}

	if s.current != nil {
		stats["lastRun"] = s.lastRun
		stats["charts"] = len(s.current.Charts)
		stats["results"] = s.current.ResultCount
		stats["battles"] = s.current.BattleCount
		stats["profiles"] = len(s.current.Profiles)
		stats["ranked"] = len(s.current.Ranking)
		stats["skipped"] = s.current.Skipped
	}
	if s.dispatcher != nil {
		stats["queueLength"] = s.dispatcher.Len()
	}

	return stats
}
