package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/JesseBremer/journal-mate/internal/models"
)

// InMemoryEntryRepository is an in-memory implementation of EntryRepository.
type InMemoryEntryRepository struct {
	mu      sync.Mutex
	entries []models.Entry
	nextID  int
}

func NewInMemoryEntryRepository() *InMemoryEntryRepository {
	return &InMemoryEntryRepository{
		entries: []models.Entry{},
		nextID:  1,
	}
}

func (r *InMemoryEntryRepository) Create(_ context.Context, e models.Entry) (models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *InMemoryEntryRepository) ListByUser(_ context.Context, userID int, ef EntryFilter) ([]models.Entry, int, error) {
	r.mu.Lock()
	filtered := []models.Entry{}
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if (ef.Since != nil && e.CreatedAt.Before(*ef.Since)) ||
			(ef.Until != nil && e.CreatedAt.After(*ef.Until)) {
			continue
		}
		filtered = append(filtered, e)
	}
	r.mu.Unlock()

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID > filtered[j].ID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)
	if ef.Offset != nil && *ef.Offset >= total {
		return []models.Entry{}, total, nil
	}

	start := 0
	if ef.Offset != nil {
		start = clamp(*ef.Offset, 0, total)
	}

	end := total
	if ef.Limit != nil && *ef.Limit > 0 {
		end = clamp(start+min(*ef.Limit, MaxEntryLimit), start, total)
	}

	return filtered[start:end], total, nil
}

func (r *InMemoryEntryRepository) GetByID(_ context.Context, userID, id int) (models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.ID == id && e.UserID == userID {
			return e, nil
		}
	}
	return models.Entry{}, ErrEntryNotFound
}

func (r *InMemoryEntryRepository) Update(_ context.Context, e models.Entry) (models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, stored := range r.entries {
		if stored.ID == e.ID && stored.UserID == e.UserID {
			stored.Title = e.Title
			stored.Content = e.Content
			stored.UpdatedAt = nextUpdatedAt(e.UpdatedAt, stored.UpdatedAt)
			r.entries[i] = stored
			return stored, nil
		}
	}
	return models.Entry{}, ErrEntryNotFound
}

func (r *InMemoryEntryRepository) Delete(_ context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.ID == id && e.UserID == userID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

// deleteByUserLocked drops every entry owned by userID; the caller holds r.mu.
func (r *InMemoryEntryRepository) deleteByUserLocked(userID int) {
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	r.entries = kept
}

// Clear drops every entry.
func (r *InMemoryEntryRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = []models.Entry{}
}
