// Package overview implements the overview aggregator: it drains the
// election merger's working delta, enriches records with representative
// weights, computes the ranked and capped overview, fingerprints it, and
// annotates time-dependent fields.
package overview

import (
	"time"

	"github.com/holiman/uint256"
)

// DefaultTopFinalVoters is the configurable size of the first-final-voters
// list, default 5.
const DefaultTopFinalVoters = 5

// TickInterval is the fixed aggregation cadence, roughly 450ms.
const TickInterval = 450 * time.Millisecond

// Entry is the overview entry, derived and keyed externally by
// block hash.
type Entry struct {
	Hash string `json:"hash"`

	NormalWeight        *uint256.Int `json:"-"`
	FinalWeight         *uint256.Int `json:"-"`
	NormalWeightDec     string       `json:"normal_weight"`
	FinalWeightDec      string       `json:"final_weight"`
	NormalWeightPercent float64      `json:"normal_weight_percent"`
	FinalWeightPercent  float64      `json:"final_weight_percent"`

	NormalVotes int `json:"normal_votes"`
	FinalVotes  int `json:"final_votes"`

	IsActive    bool `json:"is_active"`
	IsStopped   bool `json:"is_stopped"`
	IsConfirmed bool `json:"is_confirmed"`

	FirstSeen         int64 `json:"first_seen"`
	HasFirstConfirmed bool  `json:"-"`
	FirstConfirmed    int64 `json:"first_confirmed,omitempty"`

	FirstFinalVoters []string `json:"first_final_voters,omitempty"`

	// Time-dependent fields, annotated after ranking. Deliberately excluded
	// from the fingerprint (see fingerprint.go) so clock advance alone
	// never forces a rebroadcast.
	ActiveSinceSeconds      float64 `json:"active_since_seconds,omitempty"`
	HasConfirmationDuration bool    `json:"-"`
	ConfirmationDurationMs  int64   `json:"confirmation_duration_ms,omitempty"`
}
