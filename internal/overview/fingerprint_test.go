package overview

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func sampleEntry(hash string) Entry {
	return Entry{
		Hash:            hash,
		NormalWeight:    uint256.NewInt(100),
		FinalWeight:     uint256.NewInt(50),
		NormalWeightDec: "100",
		FinalWeightDec:  "50",
		NormalVotes:     2,
		FinalVotes:      1,
		IsActive:        true,
		FirstSeen:       1000,
	}
}

func TestFingerprintStableAcrossClockAdvance(t *testing.T) {
	e := sampleEntry("hash1")
	before := Fingerprint([]Entry{}, []Entry{e})

	// Simulate a later tick where only the time-dependent field changed.
	e.ActiveSinceSeconds = 42.5
	after := Fingerprint([]Entry{}, []Entry{e})

	assert.Equal(t, before, after)
}

func TestFingerprintChangesWhenWeightChanges(t *testing.T) {
	e := sampleEntry("hash1")
	before := Fingerprint([]Entry{}, []Entry{e})

	e.NormalWeightDec = "200"
	after := Fingerprint([]Entry{}, []Entry{e})

	assert.NotEqual(t, before, after)
}

func TestFingerprintIndependentOfInputOrder(t *testing.T) {
	a := sampleEntry("hashA")
	b := sampleEntry("hashB")

	first := Fingerprint([]Entry{a}, []Entry{b})
	second := Fingerprint([]Entry{b}, []Entry{a})

	assert.Equal(t, first, second)
}

func TestFingerprintChangesWhenConfirmedFlagChanges(t *testing.T) {
	e := sampleEntry("hash1")
	before := Fingerprint(nil, []Entry{e})

	e.IsConfirmed = true
	after := Fingerprint([]Entry{e}, nil)

	assert.NotEqual(t, before, after)
}
