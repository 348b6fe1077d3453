package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JesseBremer/journal-mate/internal/db"
)

type SQLStatsRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewSQLStatsRepository(database *sql.DB, dialect db.Dialect) *SQLStatsRepository {
	return &SQLStatsRepository{db: database, dialect: dialect}
}

func (r *SQLStatsRepository) GetUserStats(ctx context.Context, userID int, now time.Time) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s Stats
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT COUNT(*) FROM journal_entries WHERE user_id = ?`), userID).
		Scan(&s.TotalEntries)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count entries: %w", err)
	}
	if s.TotalEntries == 0 {
		return s, nil
	}

	weekAgo := now.UTC().Add(-7 * 24 * time.Hour)
	err = r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT COUNT(*) FROM journal_entries WHERE user_id = ? AND created_at >= ?`), userID, weekAgo).
		Scan(&s.EntriesLast7Days)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count recent entries: %w", err)
	}

	first, err := r.edgeCreatedAt(ctx, userID, "ASC")
	if err != nil {
		return Stats{}, err
	}
	last, err := r.edgeCreatedAt(ctx, userID, "DESC")
	if err != nil {
		return Stats{}, err
	}
	s.FirstEntryAt = &first
	s.LastEntryAt = &last

	return s, nil
}

// edgeCreatedAt scans the oldest or newest created_at. MIN/MAX would lose the
// column type under sqlite3, so the row is ordered and limited instead.
func (r *SQLStatsRepository) edgeCreatedAt(ctx context.Context, userID int, order string) (time.Time, error) {
	query := r.dialect.Rebind(fmt.Sprintf(`SELECT created_at FROM journal_entries WHERE user_id = ? ORDER BY created_at %s LIMIT 1`, order))

	var t time.Time
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&t); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, ErrEntryNotFound
		}
		return time.Time{}, fmt.Errorf("failed to query entry dates: %w", err)
	}
	return t, nil
}
