package repo

import (
	"context"
	"time"
)

type Stats struct {
	TotalEntries     int        `json:"total_entries"`
	EntriesLast7Days int        `json:"entries_last_7_days"`
	FirstEntryAt     *time.Time `json:"first_entry_at,omitempty"`
	LastEntryAt      *time.Time `json:"last_entry_at,omitempty"`
}

type StatsRepository interface {
	GetUserStats(ctx context.Context, userID int, now time.Time) (Stats, error)
}
