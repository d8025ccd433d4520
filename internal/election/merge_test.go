package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeNilExisting(t *testing.T) {
	delta := NewRecord("hash1", 100)
	delta.ApplyStarted(100)

	out := Merge(nil, delta)
	assert.Equal(t, "hash1", out.Hash)
	assert.True(t, out.IsActive)
	assert.True(t, out.IsStarted)
}

func TestMergeNilDelta(t *testing.T) {
	existing := NewRecord("hash1", 100)
	out := Merge(existing, nil)
	assert.Equal(t, existing.Hash, out.Hash)
	// Merge(x, nil) must return a clone, not the same pointer.
	assert.NotSame(t, existing, out)
}

func TestMergeKeepsEarliestFirstSeen(t *testing.T) {
	existing := NewRecord("hash1", 200)
	delta := NewRecord("hash1", 100)

	out := Merge(existing, delta)
	assert.Equal(t, int64(100), out.FirstSeen)
}

func TestMergeFirstSeenIgnoresLaterDelta(t *testing.T) {
	existing := NewRecord("hash1", 100)
	delta := NewRecord("hash1", 200)

	out := Merge(existing, delta)
	assert.Equal(t, int64(100), out.FirstSeen)
}

func TestMergeFirstConfirmedStickyAcrossStartedConfirmedStarted(t *testing.T) {
	r := NewRecord("hash1", 100)
	r.ApplyStarted(100)

	confirmDelta := NewRecord("hash1", 150)
	confirmDelta.ApplyConfirmation(150, "1000")
	r = Merge(r, confirmDelta)
	assert.True(t, r.IsConfirmed)
	assert.Equal(t, int64(150), r.FirstConfirmed)

	restartDelta := NewRecord("hash1", 200)
	restartDelta.ApplyStarted(200)
	r = Merge(r, restartDelta)

	// Confirmation is sticky: a later started_election never clears it or
	// moves first_confirmed.
	assert.True(t, r.IsConfirmed)
	assert.False(t, r.IsActive)
	assert.Equal(t, int64(150), r.FirstConfirmed)
}

func TestMergeVoteCountsAndDetailAreAdditive(t *testing.T) {
	r := NewRecord("hash1", 100)
	d1 := NewRecord("hash1", 100)
	d1.ApplyVote(Vote{Kind: Normal, Time: 100, Account: "acct1"})
	r = Merge(r, d1)

	d2 := NewRecord("hash1", 110)
	d2.ApplyVote(Vote{Kind: Normal, Time: 110, Account: "acct2"})
	d2.ApplyVote(Vote{Kind: Final, Time: 120, Account: "acct1"})
	r = Merge(r, d2)

	assert.Equal(t, 2, r.NormalCount)
	assert.Equal(t, 1, r.FinalCount)
	assert.Len(t, r.Detail, 3)
	// sortDetail must keep Detail time-ascending across merges.
	assert.Equal(t, int64(100), r.Detail[0].Time)
	assert.Equal(t, int64(110), r.Detail[1].Time)
	assert.Equal(t, int64(120), r.Detail[2].Time)
}

func TestMergeFlagTransitionPriorityStoppedOverConfirmed(t *testing.T) {
	r := NewRecord("hash1", 100)
	r.ApplyStarted(100)

	both := NewRecord("hash1", 200)
	both.ApplyStopped(200)
	both.IsConfirmed = true // simulate a confirmation and a stop landing in the same tick

	out := Merge(r, both)
	assert.True(t, out.IsStopped)
	assert.True(t, out.IsConfirmed)
	assert.False(t, out.IsActive)
}

func TestMergeActiveOnlySetByStartedDeltaWhenNotTerminal(t *testing.T) {
	r := NewRecord("hash1", 100)
	r.ApplyStarted(100)
	r.IsActive = false // e.g. a prior tick with no activating event

	delta := NewRecord("hash1", 110)
	delta.ApplyStarted(110)

	out := Merge(r, delta)
	assert.True(t, out.IsActive)
}

func TestMergeIsIdempotentForRepeatedTicksWithNoNewEvents(t *testing.T) {
	r := NewRecord("hash1", 100)
	r.ApplyStarted(100)
	empty := NewRecord("hash1", 0)

	first := Merge(r, empty)
	second := Merge(first, empty)

	assert.Equal(t, first.IsActive, second.IsActive)
	assert.Equal(t, first.NormalCount, second.NormalCount)
	assert.Equal(t, first.Started, second.Started)
}

func TestMergeDoesNotMutateArguments(t *testing.T) {
	existing := NewRecord("hash1", 100)
	existing.ApplyStarted(100)
	delta := NewRecord("hash1", 150)
	delta.ApplyStopped(150)

	existingStartedBefore := append([]int64(nil), existing.Started...)

	_ = Merge(existing, delta)

	assert.Equal(t, existingStartedBefore, existing.Started)
	assert.False(t, existing.IsStopped)
}

func TestKindFromTimestampSentinel(t *testing.T) {
	assert.Equal(t, Final, KindFromTimestamp(FinalTimestampSentinel))
	assert.Equal(t, Normal, KindFromTimestamp(1234567890))
	assert.Equal(t, Normal, KindFromTimestamp(0))
}

func TestVoteKindString(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "final", Final.String())
}
