// Package pipeline runs one raw snapshot through the full processing
// chain: leaderboard build, maximum-score finalization, profile
// aggregation and battle replay. The pipeline is pure; persistence and
// change tracking happen in the layers around it.
package pipeline

import (
	"context"

	"github.com/pumptrack/pumptrack/internal/domain/leaderboard"
	"github.com/pumptrack/pumptrack/internal/domain/model"
	"github.com/pumptrack/pumptrack/internal/domain/profile"
	"github.com/pumptrack/pumptrack/internal/domain/rating"
	"github.com/pumptrack/pumptrack/pkg/logger"
)

// Snapshot is the complete processed state of one run. It is built
// from scratch every run and swapped in atomically; nothing in it is
// mutated afterwards.
type Snapshot struct {
	Charts     map[string]*model.Chart
	ChartOrder []string
	Profiles   map[string]*model.Profile
	Ranking    []model.RankingEntry
	ScoreInfo  map[string]*model.ScoreStats
	LogText    string

	ResultCount int
	BattleCount int
	Skipped     int
}

// Processor wires the pipeline stages together.
type Processor struct {
	logger logger.Logger
	debug  bool
}

// Option applies a configuration option to the Processor.
type Option func(*Processor)

// WithLogger sets a custom logger for the processor and its stages.
func WithLogger(l logger.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDebug enables the replay debug log in the produced snapshot.
func WithDebug(debug bool) Option {
	return func(p *Processor) {
		p.debug = debug
	}
}

// New constructs a Processor.
func New(opts ...Option) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates the snapshot shape and runs all stages. Individual
// bad records inside a well-shaped snapshot are skipped, not fatal.
func (p *Processor) Process(ctx context.Context, data *model.RawData) (*Snapshot, error) {
	if data == nil {
		return nil, ErrNilData
	}
	if data.Players == nil {
		return nil, ErrNoPlayers
	}
	if data.SharedCharts == nil {
		return nil, ErrNoCharts
	}

	builder := leaderboard.New(leaderboard.WithLogger(p.logger))
	lb := builder.Build(ctx, data)
	builder.Finalize(ctx, lb)

	profiles := profile.New(data.Players).Aggregate(ctx, lb)

	replay := rating.New(rating.WithLogger(p.logger)).Replay(ctx, rating.Input{
		Profiles: profiles,
		Players:  data.Players,
		Battles:  lb.Battles,
		Debug:    p.debug,
	})

	snap := &Snapshot{
		Charts:      lb.Charts,
		ChartOrder:  lb.ChartOrder,
		Profiles:    replay.Profiles,
		Ranking:     replay.Ranking,
		ScoreInfo:   replay.ScoreInfo,
		LogText:     replay.LogText,
		ResultCount: len(lb.Results),
		BattleCount: len(lb.Battles),
		Skipped:     lb.Skipped,
	}

	if p.logger != nil {
		p.logger.Info(ctx, "snapshot processed",
			logger.Int("charts", len(snap.Charts)),
			logger.Int("results", snap.ResultCount),
			logger.Int("battles", snap.BattleCount),
			logger.Int("profiles", len(snap.Profiles)),
			logger.Int("ranked", len(snap.Ranking)),
			logger.Int("skipped", snap.Skipped),
		)
	}
	return snap, nil
}
