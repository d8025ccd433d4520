package overview

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nanovote/votewatch/internal/cache"
	"github.com/nanovote/votewatch/internal/election"
	"github.com/nanovote/votewatch/internal/metrics"
	"github.com/nanovote/votewatch/internal/reps"
	"github.com/nanovote/votewatch/internal/xlog"
)

// Notifier is implemented by the broadcast fanout: the aggregator calls
// Notify once per tick after publishing, so the fanout knows to walk its
// client set and compare fingerprints.
type Notifier interface {
	Notify()
}

// Aggregator runs the overview tick loop.
type Aggregator struct {
	delta    *election.WorkingDelta
	store    *election.Store
	registry *reps.Registry
	notifier Notifier
	ovCache  cache.Cache

	topFinalVoters int
	log            xlog.Logger

	// current holds the full set of overview entries known as of the last
	// tick, keyed by hash, so that untouched entries survive re-ranking
	// and re-annotation each tick without being recomputed: only merged
	// entries are retransformed, but every entry gets re-annotated.
	current map[string]Entry

	published atomic.Pointer[Overview]
}

// NewAggregator wires the aggregator to its collaborators. ovCache backs
// the published overview with the ov_ namespace (see cache.go); it may be
// nil, in which case the overview lives only in the in-memory atomic
// snapshot.
func NewAggregator(delta *election.WorkingDelta, store *election.Store, registry *reps.Registry, notifier Notifier, ovCache cache.Cache, topFinalVoters int) *Aggregator {
	a := &Aggregator{
		delta:          delta,
		store:          store,
		registry:       registry,
		notifier:       notifier,
		ovCache:        ovCache,
		topFinalVoters: topFinalVoters,
		log:            xlog.New("component", "overview"),
		current:        make(map[string]Entry),
	}
	a.published.Store(&Overview{})
	return a
}

// Current returns the most recently published overview. Never nil.
func (a *Aggregator) Current() *Overview { return a.published.Load() }

// Bootstrap repopulates in-memory overview state from whatever the
// election store already retains, so a restart against a memcache-backed
// store resumes aggregation instead of forgetting every election already
// in flight.
func (a *Aggregator) Bootstrap(ctx context.Context) error {
	hashes, err := a.store.Keys(ctx)
	if err != nil {
		return err
	}
	if len(hashes) == 0 {
		return nil
	}
	records, err := a.store.GetMulti(ctx, hashes)
	if err != nil {
		return err
	}
	snap := a.registry.Current()
	aliases := a.registry.Aliases()
	for hash, r := range records {
		a.current[hash] = Transform(r, snap, aliases, a.topFinalVoters)
	}
	a.log.Info("bootstrapped overview state from election store", "records", len(records))
	return nil
}

// Run executes the tick loop until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Aggregator) tick(ctx context.Context) {
	start := time.Now()

	// Step 1: steal the working delta.
	stolen := a.delta.Steal()

	// Step 2: merge into the main election store.
	merged, err := a.store.MergeDelta(ctx, stolen)
	if err != nil {
		a.log.Error("failed to merge election delta, retaining previous overview", "error", err)
		return
	}

	// Step 3: transform merged entries, reusing one representative
	// snapshot for the whole tick.
	snap := a.registry.Current()
	aliases := a.registry.Aliases()
	touched := make(map[string]bool, len(merged))
	for hash, record := range merged {
		a.current[hash] = Transform(record, snap, aliases, a.topFinalVoters)
		touched[hash] = true
	}

	// Step 4: aggregate into ranked, capped groups.
	ov, evicted := ranked(a.current)

	// Step 6: annotate time-dependent fields on every surviving entry,
	// excluded from the fingerprint computed next.
	nowMs := start.UnixMilli()
	annotate(ov.Confirmed, nowMs)
	annotate(ov.Unconfirmed, nowMs)

	// Step 5: fingerprint the combined, canonical overview.
	ov.Fingerprint = Fingerprint(ov.Confirmed, ov.Unconfirmed)

	a.published.Store(&ov)

	if err := persist(ctx, a.ovCache, ov, touched); err != nil {
		a.log.Warn("failed to persist overview to cache", "error", err)
	}

	// Step 7: evict elections that fell out of both capped groups, from
	// both the in-memory ranking state and the raw election store.
	if len(evicted) > 0 {
		for _, h := range evicted {
			delete(a.current, h)
		}
		if err := a.store.Evict(ctx, evicted); err != nil {
			a.log.Warn("failed to evict dropped elections from store", "error", err, "count", len(evicted))
		}
	}

	metrics.TickDuration.Observe(time.Since(start).Seconds())
	metrics.OverviewConfirmed.Set(float64(len(ov.Confirmed)))
	metrics.OverviewUnconfirmed.Set(float64(len(ov.Unconfirmed)))

	if a.notifier != nil {
		a.notifier.Notify()
	}
}

func annotate(entries []Entry, nowMs int64) {
	for i := range entries {
		e := &entries[i]
		e.ActiveSinceSeconds = float64(nowMs-e.FirstSeen) / 1000
		if e.HasFirstConfirmed {
			e.ConfirmationDurationMs = e.FirstConfirmed - e.FirstSeen
			e.HasConfirmationDuration = true
		}
	}
}
