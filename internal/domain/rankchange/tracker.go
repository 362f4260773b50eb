// Package rankchange compares the freshly computed ranking against
// persisted snapshots and annotates each entry with how its place and
// rating moved. The baseline only advances once a change has survived
// two consecutive runs, so a burst of refreshes does not erase the
// movement markers before anyone sees them.
package rankchange

import (
	"context"

	"github.com/pumptrack/pumptrack/internal/domain/model"
	"github.com/pumptrack/pumptrack/pkg/logger"
)

// Slot names. The schema version suffix keeps snapshots from older
// incompatible layouts from being compared against current data.
const (
	slotLastChanged       = "lastChangedRanking"
	slotLastChangedPoints = "lastChangedRankingPoints"
	slotLastFetched       = "lastFetchedRanking"

	// DefaultSchema tags the current snapshot layout.
	DefaultSchema = "v3"
)

// Store persists ranking snapshots between runs. A nil slice with a
// nil error means the slot has never been written.
type Store interface {
	Read(ctx context.Context, slot string) ([]model.SnapshotEntry, error)
	Write(ctx context.Context, slot string, entries []model.SnapshotEntry) error
}

// Tracker annotates rankings with change markers. Storage failures are
// logged and degrade to "no baseline"; they never fail a run.
type Tracker struct {
	store  Store
	schema string
	logger logger.Logger
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithSchema overrides the snapshot schema version suffix.
func WithSchema(schema string) Option {
	return func(t *Tracker) {
		if schema != "" {
			t.schema = schema
		}
	}
}

// WithLogger sets a custom logger for the tracker.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New constructs a Tracker over the given store.
func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		schema: DefaultSchema,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Apply annotates ranking in place and rotates the persisted
// snapshots. The place baseline is the last *changed* order, not the
// last fetched one: the last-fetched snapshot only graduates to
// baseline once the current run differs from it again. Rating
// baselines rotate the same way, independently.
func (t *Tracker) Apply(ctx context.Context, ranking []model.RankingEntry) {
	lastChanged := t.read(ctx, slotLastChanged)
	lastChangedPoints := t.read(ctx, slotLastChangedPoints)
	lastFetched := t.read(ctx, slotLastFetched)

	current := snapshot(ranking)

	pointsBaseline := ratingsOf(lastChangedPoints)
	if !sameRatings(ratingsOf(current), ratingsOf(lastFetched)) {
		t.write(ctx, slotLastChangedPoints, lastFetched)
		pointsBaseline = ratingsOf(lastFetched)
	}

	prevOrder := idsOf(lastChanged)
	if !sameOrder(idsOf(current), idsOf(lastFetched)) {
		t.write(ctx, slotLastChanged, lastFetched)
		prevOrder = idsOf(lastFetched)
	}

	t.write(ctx, slotLastFetched, current)

	annotate(ranking, prevOrder, pointsBaseline)
}

// annotate fills in PrevRating and Change for every entry. With no
// baseline order at all, every entry keeps the zero Change.
func annotate(ranking []model.RankingEntry, prevOrder []string, pointsBaseline map[string]int) {
	prevPlace := make(map[string]int, len(prevOrder))
	for i, id := range prevOrder {
		prevPlace[id] = i
	}

	for i := range ranking {
		entry := &ranking[i]
		if rating, ok := pointsBaseline[entry.PlayerID]; ok {
			r := rating
			entry.PrevRating = &r
		}
		if len(prevOrder) == 0 {
			continue
		}
		prev, ok := prevPlace[entry.PlayerID]
		if !ok {
			entry.Change = model.Change{Kind: model.ChangeNew}
			continue
		}
		entry.Change = model.Change{
			Kind:   model.ChangeMoved,
			Places: prev - i,
		}
	}
}

func snapshot(ranking []model.RankingEntry) []model.SnapshotEntry {
	entries := make([]model.SnapshotEntry, len(ranking))
	for i, e := range ranking {
		entries[i] = model.SnapshotEntry{ID: e.PlayerID, Rating: e.Rating}
	}
	return entries
}

func idsOf(entries []model.SnapshotEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func ratingsOf(entries []model.SnapshotEntry) map[string]int {
	ratings := make(map[string]int, len(entries))
	for _, e := range entries {
		ratings[e.ID] = e.Rating
	}
	return ratings
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameRatings(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for id, rating := range a {
		other, ok := b[id]
		if !ok || other != rating {
			return false
		}
	}
	return true
}

func (t *Tracker) slot(name string) string {
	return name + "_" + t.schema
}

func (t *Tracker) read(ctx context.Context, name string) []model.SnapshotEntry {
	entries, err := t.store.Read(ctx, t.slot(name))
	if err != nil {
		if t.logger != nil {
			t.logger.Warn(ctx, "snapshot read failed",
				logger.String("slot", t.slot(name)), logger.Error(err))
		}
		return nil
	}
	return entries
}

func (t *Tracker) write(ctx context.Context, name string, entries []model.SnapshotEntry) {
	if err := t.store.Write(ctx, t.slot(name), entries); err != nil {
		if t.logger != nil {
			t.logger.Warn(ctx, "snapshot write failed",
				logger.String("slot", t.slot(name)), logger.Error(err))
		}
	}
}
