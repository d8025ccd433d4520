package election

// Merge applies delta onto existing per the field-by-field merge
// discipline. existing may be nil (first mention of the hash in the main
// store). The result is a new Record; neither argument is mutated, which
// keeps Merge idempotent and safe to call repeatedly.
func Merge(existing, delta *Record) *Record {
	if delta == nil {
		return existing.Clone()
	}
	if existing == nil {
		return delta.Clone()
	}

	out := existing.Clone()

	// first_seen <= min(any timestamp in record): keep the earliest.
	if delta.FirstSeen != 0 && (out.FirstSeen == 0 || delta.FirstSeen < out.FirstSeen) {
		out.FirstSeen = delta.FirstSeen
	}

	// first_confirmed = existing OR delta; never reassigned once set.
	if !out.HasConfirmedAt && delta.HasConfirmedAt {
		out.FirstConfirmed = delta.FirstConfirmed
		out.HasConfirmedAt = true
	}

	// Append, never replace, the ordered event-time sequences.
	out.Started = append(out.Started, delta.Started...)
	out.Confirmed = append(out.Confirmed, delta.Confirmed...)
	out.Stopped = append(out.Stopped, delta.Stopped...)

	// Vote counts are additive; detail is extended then re-sorted.
	out.NormalCount += delta.NormalCount
	out.FinalCount += delta.FinalCount
	out.Detail = append(out.Detail, delta.Detail...)
	out.sortDetail()

	if delta.Amount != "" {
		out.Amount = delta.Amount
	}

	out.IsStarted = out.IsStarted || delta.IsStarted

	// Flag-transition priority: stopped > confirmed > active, with
	// is_confirmed sticky — once confirmed, a record is never re-activated.
	out.IsStopped = out.IsStopped || delta.IsStopped
	out.IsConfirmed = out.IsConfirmed || delta.IsConfirmed

	switch {
	case out.IsStopped, out.IsConfirmed:
		out.IsActive = false
	case delta.IsActive:
		out.IsActive = true
	}
	// default: no terminal or activating event this tick, out.IsActive unchanged

	return out
}
