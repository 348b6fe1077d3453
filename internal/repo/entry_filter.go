package repo

import "time"

const MaxEntryLimit = 100

type EntryFilter struct {
	Since  *time.Time
	Until  *time.Time
	Offset *int
	Limit  *int
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// nextUpdatedAt keeps updated_at strictly increasing for an entry.
func nextUpdatedAt(requested, stored time.Time) time.Time {
	if requested.After(stored) {
		return requested
	}
	return stored.Add(time.Microsecond)
}
