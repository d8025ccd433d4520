package reps

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"

	"github.com/nanovote/votewatch/internal/xlog"
)

// RefreshInterval is the fixed snapshot refresh cadence.
const RefreshInterval = 60 * time.Second

// wire response shapes for the three RPC calls. The node RPC's exact
// schema is an external contract this package only partially mirrors.
type representativesOnlineResponse struct {
	Representatives map[string]struct {
		Weight string `json:"weight"`
	} `json:"representatives"`
}

type telemetryResponse struct {
	Metrics []struct {
		Address       string `json:"address"`
		Port          any    `json:"port"`
		NodeID        string `json:"node_id"`
		Maker         string `json:"maker"`
		MajorVersion  string `json:"major_version"`
		MinorVersion  string `json:"minor_version"`
		PreReleaseVer string `json:"pre_release_version"`
	} `json:"metrics"`
}

type confirmationQuorumResponse struct {
	QuorumDelta string `json:"quorum_delta"`
	Peers       []struct {
		IP string `json:"ip"`
	} `json:"peer_details"`
}

// Registry runs the periodic RPC poller and exposes the current snapshot.
type Registry struct {
	client  *Client
	log     xlog.Logger
	aliases map[string]string

	snapshot atomic.Pointer[Snapshot]
}

// NewRegistry builds a Registry. aliases maps known account ids to
// human-readable names; it may be nil or empty.
func NewRegistry(client *Client, aliases map[string]string) *Registry {
	r := &Registry{client: client, log: xlog.New("component", "reps"), aliases: aliases}
	r.snapshot.Store(emptySnapshot())
	return r
}

// Current returns the most recently published snapshot. Never nil.
func (r *Registry) Current() *Snapshot { return r.snapshot.Load() }

// Aliases exposes the static alias table for the overview aggregator and
// detail endpoint.
func (r *Registry) Aliases() map[string]string { return r.aliases }

// Run refreshes the snapshot every RefreshInterval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Registry) refresh(ctx context.Context) {
	type result struct {
		reps     representativesOnlineResponse
		telem    telemetryResponse
		quorum   confirmationQuorumResponse
		repsErr  error
		telemErr error
		quorErr  error
	}
	var res result

	done := make(chan struct{}, 3)
	go func() {
		res.repsErr = r.client.Call(ctx, "representatives_online", map[string]any{"weight": "true"}, &res.reps)
		done <- struct{}{}
	}()
	go func() {
		res.telemErr = r.client.CallDroppable(ctx, "telemetry", map[string]any{"raw": "true"}, &res.telem)
		done <- struct{}{}
	}()
	go func() {
		res.quorErr = r.client.CallDroppable(ctx, "confirmation_quorum", map[string]any{"peer_details": "true"}, &res.quorum)
		done <- struct{}{}
	}()
	for i := 0; i < 3; i++ {
		<-done
	}

	// representatives_online is the only non-droppable call: without it
	// there is no weight data to build a snapshot from at all, so the
	// previous snapshot is retained. telemetry and confirmation_quorum
	// failures are droppable: the cycle proceeds with those response
	// fields left at their zero value.
	if res.repsErr != nil {
		r.log.Warn("representatives_online failed, keeping previous snapshot", "error", res.repsErr)
		return
	}
	var droppable *DroppableError
	if errors.As(res.telemErr, &droppable) {
		r.log.Warn("telemetry failed, proceeding without it", "error", res.telemErr)
	}
	if errors.As(res.quorErr, &droppable) {
		r.log.Warn("confirmation_quorum failed, proceeding without it", "error", res.quorErr)
	}

	next := buildSnapshot(res.reps, res.telem, res.quorum)
	r.snapshot.Store(next)
	r.log.Debug("representative snapshot refreshed", "reps", len(next.Reps), "total_weight", next.TotalWeight.Dec())
}

// buildSnapshot parses the three raw RPC responses into one snapshot.
func buildSnapshot(repsResp representativesOnlineResponse, telemResp telemetryResponse, quorumResp confirmationQuorumResponse) *Snapshot {
	entries := make(map[string]Entry, len(repsResp.Representatives))
	total := uint256.NewInt(0)

	for account, r := range repsResp.Representatives {
		w, ok := parseWeight(r.Weight)
		if !ok {
			w = uint256.NewInt(0)
		}
		entries[account] = Entry{Account: account, VotingWeight: w}
		total = new(uint256.Int).Add(total, w)
	}

	// weight_percent = weight / total_weight * 100, computed in float64
	// after arbitrary-precision summation.
	totalF := weightToFloat(total)
	for account, e := range entries {
		if totalF > 0 {
			e.WeightPercent = weightToFloat(e.VotingWeight) / totalF * 100
		}
		entries[account] = e
	}

	// Join telemetry by [address]:port against quorum peers' ip. The node
	// RPC does not return an account id in telemetry, so this joins by
	// address only; entries whose account cannot be resolved are simply
	// left without telemetry.
	knownPeers := make(map[string]bool, len(quorumResp.Peers))
	for _, p := range quorumResp.Peers {
		knownPeers[p.IP] = true
	}
	for _, m := range telemResp.Metrics {
		key := peerKey(m.Address, m.Port)
		if !knownPeers[key] {
			continue
		}
		if e, ok := entries[m.Address]; ok {
			e.HasTelemetry = true
			e.NodeMaker = m.Maker
			e.NodeID = m.NodeID
			e.Version = versionString(m.MajorVersion, m.MinorVersion, m.PreReleaseVer)
			entries[m.Address] = e
		}
	}

	quorumDelta, ok := parseUint64(quorumResp.QuorumDelta)
	if !ok || quorumDelta == 0 {
		quorumDelta = DefaultQuorumDelta
	}

	return &Snapshot{Reps: entries, TotalWeight: total, Quorum: Quorum{QuorumDelta: quorumDelta}}
}

func parseWeight(s string) (*uint256.Int, bool) {
	if s == "" {
		return nil, false
	}
	w := new(uint256.Int)
	if err := w.SetFromDecimal(s); err != nil {
		return nil, false
	}
	return w, true
}

func parseUint64(s string) (uint64, bool) {
	w, ok := parseWeight(s)
	if !ok || !w.IsUint64() {
		return 0, false
	}
	return w.Uint64(), true
}

// weightToFloat converts a uint256 weight to a float64 for percentage math.
func weightToFloat(w *uint256.Int) float64 {
	if w == nil {
		return 0
	}
	return w.Float64()
}

