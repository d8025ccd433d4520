// Package reps implements the representative registry: a periodic poller
// of the node RPC that publishes an atomically-swapped snapshot of
// representative weights, telemetry, and quorum parameters.
package reps

import (
	"fmt"
	"sort"
	"strings"

	"github.com/holiman/uint256"
)

// Entry is one representative's weight and telemetry.
type Entry struct {
	Account       string
	VotingWeight  *uint256.Int
	WeightPercent float64

	HasTelemetry bool
	NodeMaker    string
	NodeID       string
	Version      string
}

// Alias returns the human-readable name if known, else the raw account id.
// Resolution is done by the registry's alias table.
func (e Entry) Alias(aliases map[string]string) string {
	if a, ok := aliases[e.Account]; ok && a != "" {
		return a
	}
	return e.Account
}

// Quorum is the quorum snapshot: at least quorum_delta, defaulting to 1
// when absent or unparseable.
type Quorum struct {
	QuorumDelta uint64
}

// DefaultQuorumDelta is applied when the RPC omits or mangles quorum_delta.
const DefaultQuorumDelta uint64 = 1

// Snapshot is the immutable, copy-on-write published view the registry
// swaps in as a whole value on every successful refresh.
type Snapshot struct {
	Reps        map[string]Entry
	TotalWeight *uint256.Int
	Quorum      Quorum
}

// Weight looks up a representative's voting weight, returning zero for an
// account the registry has never seen — an unknown account simply
// contributes no weight to the overview dedup walk.
func (s *Snapshot) Weight(account string) *uint256.Int {
	if s == nil {
		return uint256.NewInt(0)
	}
	if e, ok := s.Reps[account]; ok && e.VotingWeight != nil {
		return e.VotingWeight
	}
	return uint256.NewInt(0)
}

// SortedReps returns every representative entry ordered by descending
// voting weight.
func (s *Snapshot) SortedReps() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, 0, len(s.Reps))
	for _, e := range s.Reps {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].VotingWeight.Cmp(out[j].VotingWeight) > 0
	})
	return out
}

// QuorumDelta returns the snapshot's quorum delta, or the default.
func (s *Snapshot) QuorumDelta() uint64 {
	if s == nil || s.Quorum.QuorumDelta == 0 {
		return DefaultQuorumDelta
	}
	return s.Quorum.QuorumDelta
}

// emptySnapshot is used before the first successful refresh.
func emptySnapshot() *Snapshot {
	return &Snapshot{Reps: map[string]Entry{}, TotalWeight: uint256.NewInt(0), Quorum: Quorum{QuorumDelta: DefaultQuorumDelta}}
}

// versionString assembles "major.minor.pre_release", joining only
// present/non-null fields and falling back to "0.0.0".
func versionString(major, minor, preRelease string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{major, minor, preRelease} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "0.0.0"
	}
	return strings.Join(parts, ".")
}

// peerKey is the "[address]:port" join key used to match telemetry against
// quorum peers.
func peerKey(address string, port any) string {
	return fmt.Sprintf("[%s]:%v", address, port)
}
