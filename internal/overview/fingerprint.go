package overview

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// canonicalEntry is Entry stripped of the time-dependent fields so that
// clock advance alone never changes the fingerprint. Field order is fixed
// by declaration, giving a stable serialization.
type canonicalEntry struct {
	Hash                string   `json:"hash"`
	NormalWeight        string   `json:"normal_weight"`
	FinalWeight         string   `json:"final_weight"`
	NormalWeightPercent float64  `json:"normal_weight_percent"`
	FinalWeightPercent  float64  `json:"final_weight_percent"`
	NormalVotes         int      `json:"normal_votes"`
	FinalVotes          int      `json:"final_votes"`
	IsActive            bool     `json:"is_active"`
	IsStopped           bool     `json:"is_stopped"`
	IsConfirmed         bool     `json:"is_confirmed"`
	FirstSeen           int64    `json:"first_seen"`
	FirstConfirmed      int64    `json:"first_confirmed,omitempty"`
	FirstFinalVoters    []string `json:"first_final_voters,omitempty"`
}

func toCanonical(e Entry) canonicalEntry {
	return canonicalEntry{
		Hash:                e.Hash,
		NormalWeight:        e.NormalWeightDec,
		FinalWeight:         e.FinalWeightDec,
		NormalWeightPercent: e.NormalWeightPercent,
		FinalWeightPercent:  e.FinalWeightPercent,
		NormalVotes:         e.NormalVotes,
		FinalVotes:          e.FinalVotes,
		IsActive:            e.IsActive,
		IsStopped:           e.IsStopped,
		IsConfirmed:         e.IsConfirmed,
		FirstSeen:           e.FirstSeen,
		FirstConfirmed:      e.FirstConfirmed,
		FirstFinalVoters:    e.FirstFinalVoters,
	}
}

// Fingerprint hashes a canonical serialization of the combined,
// hash-sorted overview. Confirmed and unconfirmed are combined and sorted
// by hash so that which group an entry currently sits in does not by
// itself perturb key ordering beyond what the content says.
func Fingerprint(confirmed, unconfirmed []Entry) string {
	all := make([]canonicalEntry, 0, len(confirmed)+len(unconfirmed))
	for _, e := range confirmed {
		all = append(all, toCanonical(e))
	}
	for _, e := range unconfirmed {
		all = append(all, toCanonical(e))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Hash < all[j].Hash })

	// encoding/json already emits map-free, struct-ordered output; there are
	// no nested maps left in canonicalEntry, so key order is deterministic.
	raw, err := json.Marshal(all)
	if err != nil {
		// canonicalEntry is a plain, marshalable struct; this cannot fail
		// in practice, but fingerprinting must never panic the tick.
		raw = []byte(err.Error())
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
