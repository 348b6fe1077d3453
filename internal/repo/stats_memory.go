package repo

import (
	"context"
	"time"
)

type InMemoryStatsRepository struct {
	entryRepo EntryRepository
}

func NewInMemoryStatsRepository(entryRepo EntryRepository) *InMemoryStatsRepository {
	return &InMemoryStatsRepository{entryRepo: entryRepo}
}

func (i *InMemoryStatsRepository) GetUserStats(ctx context.Context, userID int, now time.Time) (Stats, error) {
	s := Stats{}

	entries, total, err := i.entryRepo.ListByUser(ctx, userID, EntryFilter{})
	if err != nil {
		return s, err
	}
	s.TotalEntries = total
	if total == 0 {
		return s, nil
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	for _, e := range entries {
		if !e.CreatedAt.Before(weekAgo) {
			s.EntriesLast7Days++
		}
	}

	// entries are newest first
	last := entries[0].CreatedAt
	first := entries[len(entries)-1].CreatedAt
	s.FirstEntryAt = &first
	s.LastEntryAt = &last

	return s, nil
}
