package election

import "sync"

// WorkingDelta is the election merger's scratch buffer: the small map of
// records touched since the last aggregation tick. It is not the full
// election store — the overview aggregator steals it each tick and merges
// it into the store via the cache contract.
type WorkingDelta struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewWorkingDelta returns an empty delta.
func NewWorkingDelta() *WorkingDelta {
	return &WorkingDelta{records: make(map[string]*Record)}
}

// ensure returns the delta's record for hash, creating it with FirstSeen
// set to t if this is the first mention of hash in the current delta.
func (d *WorkingDelta) ensure(hash string, t int64) *Record {
	r, ok := d.records[hash]
	if !ok {
		r = NewRecord(hash, t)
		d.records[hash] = r
	}
	return r
}

// ApplyVote handles a decoded "vote" event, fanning it out across every
// block hash named in the payload.
func (d *WorkingDelta) ApplyVote(hashes []string, t int64, account string, kind VoteKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range hashes {
		d.ensure(h, t).ApplyVote(Vote{Kind: kind, Time: t, Account: account})
	}
}

// ApplyStarted handles a decoded "started_election" event.
func (d *WorkingDelta) ApplyStarted(hash string, t int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(hash, t).ApplyStarted(t)
}

// ApplyStopped handles a decoded "stopped_election" event.
func (d *WorkingDelta) ApplyStopped(hash string, t int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(hash, t).ApplyStopped(t)
}

// ApplyConfirmation handles a decoded "confirmation" event.
func (d *WorkingDelta) ApplyConfirmation(hash string, t int64, amount string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(hash, t).ApplyConfirmation(t, amount)
}

// Steal atomically swaps out the accumulated records for a fresh, empty
// map, and returns what was accumulated. The lock is held only for the
// swap, not for the merge that follows.
func (d *WorkingDelta) Steal() map[string]*Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	stolen := d.records
	d.records = make(map[string]*Record)
	return stolen
}
