package overview

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"

	"github.com/nanovote/votewatch/internal/election"
	"github.com/nanovote/votewatch/internal/reps"
)

// Transform walks a record's vote detail in time order, maintaining
// per-kind seen-account sets so each account contributes its weight at
// most once per kind, builds the first-N final-voter alias list, and
// computes weight percentages against the quorum delta.
func Transform(r *election.Record, snap *reps.Snapshot, aliases map[string]string, topFinalVoters int) Entry {
	if topFinalVoters <= 0 {
		topFinalVoters = DefaultTopFinalVoters
	}

	seenNormal := mapset.NewThreadUnsafeSet[string]()
	seenFinal := mapset.NewThreadUnsafeSet[string]()

	normalWeight := uint256.NewInt(0)
	finalWeight := uint256.NewInt(0)

	type finalVoter struct {
		time    int64
		account string
	}
	var finalVoters []finalVoter

	// r.Detail is already time-ascending; a stable scan here preserves the
	// "first occurrence" semantics required by the dedup rule.
	for _, v := range r.Detail {
		switch v.Kind {
		case election.Normal:
			if !seenNormal.Contains(v.Account) {
				seenNormal.Add(v.Account)
				normalWeight = new(uint256.Int).Add(normalWeight, snap.Weight(v.Account))
			}
		case election.Final:
			if !seenFinal.Contains(v.Account) {
				seenFinal.Add(v.Account)
				finalWeight = new(uint256.Int).Add(finalWeight, snap.Weight(v.Account))
			}
			finalVoters = append(finalVoters, finalVoter{time: v.Time, account: v.Account})
		}
	}

	sort.SliceStable(finalVoters, func(i, j int) bool { return finalVoters[i].time < finalVoters[j].time })
	firstFinal := make([]string, 0, topFinalVoters)
	for i, fv := range finalVoters {
		if i >= topFinalVoters {
			break
		}
		firstFinal = append(firstFinal, aliasOf(fv.account, aliases))
	}

	quorum := snap.QuorumDelta()
	entry := Entry{
		Hash:                r.Hash,
		NormalWeight:        normalWeight,
		FinalWeight:         finalWeight,
		NormalWeightDec:     normalWeight.Dec(),
		FinalWeightDec:      finalWeight.Dec(),
		NormalWeightPercent: percentOf(normalWeight, quorum),
		FinalWeightPercent:  percentOf(finalWeight, quorum),
		NormalVotes:         r.NormalCount,
		FinalVotes:          r.FinalCount,
		IsActive:            r.IsActive,
		IsStopped:           r.IsStopped,
		IsConfirmed:         r.IsConfirmed,
		FirstSeen:           r.FirstSeen,
		HasFirstConfirmed:   r.HasConfirmedAt,
		FirstConfirmed:      r.FirstConfirmed,
		FirstFinalVoters:    firstFinal,
	}
	return entry
}

func aliasOf(account string, aliases map[string]string) string {
	if a, ok := aliases[account]; ok && a != "" {
		return a
	}
	return account
}

// percentOf computes weight / quorumDelta * 100 in double precision, after
// arbitrary-precision weight accumulation.
func percentOf(weight *uint256.Int, quorumDelta uint64) float64 {
	if quorumDelta == 0 {
		quorumDelta = 1
	}
	return weight.Float64() / float64(quorumDelta) * 100
}
