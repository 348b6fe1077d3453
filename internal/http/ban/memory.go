package ban

import (
	"context"
	"sync"
	"time"

	"github.com/JesseBremer/journal-mate/internal/logger"
)

type record struct {
	strikes     int
	windowStart time.Time
	bannedUntil time.Time
}

// MemoryTracker keeps strikes and bans in process memory.
type MemoryTracker struct {
	mu      sync.Mutex
	policy  Policy
	records map[string]*record
	now     func() time.Time
}

func NewMemoryTracker(policy Policy) *MemoryTracker {
	return &MemoryTracker{
		policy:  policy,
		records: make(map[string]*record),
		now:     time.Now,
	}
}

func (m *MemoryTracker) IsBanned(_ context.Context, target string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[target]
	if !ok {
		return false, nil
	}
	return m.now().Before(rec.bannedUntil), nil
}

func (m *MemoryTracker) Strike(_ context.Context, target, route string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	rec, ok := m.records[target]
	if !ok {
		rec = &record{windowStart: now}
		m.records[target] = rec
	}
	if now.Before(rec.bannedUntil) {
		return true, nil
	}
	if now.Sub(rec.windowStart) > m.policy.StrikeWindow {
		rec.strikes = 0
		rec.windowStart = now
	}

	rec.strikes++
	if rec.strikes < m.policy.MaxStrikes {
		return false, nil
	}

	rec.bannedUntil = now.Add(m.policy.BanDuration)
	logBan(BanLogEntry{Target: target, Route: route, Strikes: rec.strikes, Time: now}, m.policy.BanDuration)
	rec.strikes = 0
	rec.windowStart = now
	return true, nil
}

// RemoveExpired drops targets that are neither banned nor inside an open
// strike window and returns how many were removed.
func (m *MemoryTracker) RemoveExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for target, rec := range m.records {
		if now.Before(rec.bannedUntil) || now.Sub(rec.windowStart) <= m.policy.StrikeWindow {
			continue
		}
		delete(m.records, target)
		removed++
	}
	return removed
}

// StartCleanupLoop calls RemoveExpired every interval until ctx is done.
func (m *MemoryTracker) StartCleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.RemoveExpired(); n > 0 {
				logger.Debugf("ban: pruned %d expired records", n)
			}
		}
	}
}

func (m *MemoryTracker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Reset forgets every strike and ban.
func (m *MemoryTracker) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]*record)
}
