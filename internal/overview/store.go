package overview

import "sort"

// Capacity constants for the ranked overview groups.
const (
	MaxConfirmedEntries   = 100
	MaxUnconfirmedEntries = 5000
)

// Overview is the published, ranked and capped view: the whole structure
// is replaced by pointer swap each tick so the fanout and the single-block
// endpoint always observe a consistent snapshot.
type Overview struct {
	Confirmed   []Entry
	Unconfirmed []Entry
	Fingerprint string
}

// ranked splits a combined set of entries into the confirmed/unconfirmed
// groups, orders and caps each, and reports which hashes fell out of both
// groups so the caller can evict them.
func ranked(all map[string]Entry) (overview Overview, evicted []string) {
	var confirmed, unconfirmed []Entry
	for _, e := range all {
		if e.IsConfirmed {
			confirmed = append(confirmed, e)
		} else {
			unconfirmed = append(unconfirmed, e)
		}
	}

	// confirmed: ordered by first_seen descending, capped at 100.
	sort.Slice(confirmed, func(i, j int) bool { return confirmed[i].FirstSeen > confirmed[j].FirstSeen })
	if len(confirmed) > MaxConfirmedEntries {
		for _, e := range confirmed[MaxConfirmedEntries:] {
			evicted = append(evicted, e.Hash)
		}
		confirmed = confirmed[:MaxConfirmedEntries]
	}

	// unconfirmed: ordered lexicographically by (normal_weight, final_weight)
	// descending, capped at 5,000.
	sort.Slice(unconfirmed, func(i, j int) bool {
		a, b := unconfirmed[i], unconfirmed[j]
		if c := a.NormalWeight.Cmp(b.NormalWeight); c != 0 {
			return c > 0
		}
		return a.FinalWeight.Cmp(b.FinalWeight) > 0
	})
	if len(unconfirmed) > MaxUnconfirmedEntries {
		for _, e := range unconfirmed[MaxUnconfirmedEntries:] {
			evicted = append(evicted, e.Hash)
		}
		unconfirmed = unconfirmed[:MaxUnconfirmedEntries]
	}

	overview.Confirmed = confirmed
	overview.Unconfirmed = unconfirmed
	return overview, evicted
}
