package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JesseBremer/journal-mate/internal/db"
	"github.com/JesseBremer/journal-mate/internal/models"
)

type SQLEntryRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewSQLEntryRepository(database *sql.DB, dialect db.Dialect) *SQLEntryRepository {
	return &SQLEntryRepository{db: database, dialect: dialect}
}

const entryColumns = `id, user_id, title, content, created_at, updated_at`

func (r *SQLEntryRepository) Create(ctx context.Context, e models.Entry) (models.Entry, error) {
	query := r.dialect.Rebind(`INSERT INTO journal_entries (user_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, e.UserID, e.Title, e.Content, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}
	return e, nil
}

// ListByUser returns the user's entries newest first along with the total
// number of entries matching the filter before pagination.
func (r *SQLEntryRepository) ListByUser(ctx context.Context, userID int, ef EntryFilter) ([]models.Entry, int, error) {
	whereClause, args := r.buildWhereClause(userID, ef)

	total, err := r.getTotal(ctx, whereClause, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	if ef.Offset != nil && *ef.Offset >= total {
		return []models.Entry{}, total, nil
	}

	query, queryArgs := r.buildMainQuery(whereClause, args, ef)
	entries, err := r.executeQuery(ctx, query, queryArgs)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute query: %w", err)
	}
	return entries, total, nil
}

func (r *SQLEntryRepository) buildWhereClause(userID int, ef EntryFilter) (string, []any) {
	args := []any{userID}
	whereClause := "WHERE user_id = ?"

	if ef.Since != nil {
		whereClause += " AND created_at >= ?"
		args = append(args, ef.Since.UTC())
	}
	if ef.Until != nil {
		whereClause += " AND created_at <= ?"
		args = append(args, ef.Until.UTC())
	}
	return whereClause, args
}

func (r *SQLEntryRepository) buildMainQuery(whereClause string, baseArgs []any, ef EntryFilter) (string, []any) {
	query := fmt.Sprintf("SELECT %s FROM journal_entries %s ORDER BY created_at DESC, id DESC", entryColumns, whereClause)
	args := make([]any, len(baseArgs))
	copy(args, baseArgs)

	if ef.Limit != nil && *ef.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, min(*ef.Limit, MaxEntryLimit))
		if ef.Offset != nil && *ef.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, *ef.Offset)
		}
	} else if ef.Offset != nil && *ef.Offset > 0 {
		// SQLite needs a LIMIT before OFFSET; -1 means unbounded there and
		// Postgres accepts LIMIT ALL.
		if r.dialect == db.Postgres {
			query += " LIMIT ALL OFFSET ?"
		} else {
			query += " LIMIT -1 OFFSET ?"
		}
		args = append(args, *ef.Offset)
	}

	return r.dialect.Rebind(query), args
}

func (r *SQLEntryRepository) getTotal(ctx context.Context, whereClause string, args []any) (int, error) {
	countQuery := r.dialect.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM journal_entries %s", whereClause))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *SQLEntryRepository) executeQuery(ctx context.Context, query string, args []any) ([]models.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *SQLEntryRepository) GetByID(ctx context.Context, userID, id int) (models.Entry, error) {
	query := r.dialect.Rebind(fmt.Sprintf("SELECT %s FROM journal_entries WHERE id = ? AND user_id = ?", entryColumns))
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var e models.Entry
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, ErrEntryNotFound
	}
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to query entry: %w", err)
	}
	return e, nil
}

func (r *SQLEntryRepository) Update(ctx context.Context, e models.Entry) (models.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lockSuffix := ""
	if r.dialect == db.Postgres {
		lockSuffix = " FOR UPDATE"
	}
	selectQuery := r.dialect.Rebind("SELECT created_at, updated_at FROM journal_entries WHERE id = ? AND user_id = ?" + lockSuffix)

	var createdAt, storedUpdatedAt time.Time
	err = tx.QueryRowContext(ctx, selectQuery, e.ID, e.UserID).Scan(&createdAt, &storedUpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, ErrEntryNotFound
	}
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to query entry: %w", err)
	}

	e.CreatedAt = createdAt
	e.UpdatedAt = nextUpdatedAt(e.UpdatedAt, storedUpdatedAt)

	updateQuery := r.dialect.Rebind(`UPDATE journal_entries SET title = ?, content = ?, updated_at = ? WHERE id = ? AND user_id = ?`)
	res, err := tx.ExecContext(ctx, updateQuery, e.Title, e.Content, e.UpdatedAt, e.ID, e.UserID)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to update entry: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return models.Entry{}, ErrEntryNotFound
	}

	if err := tx.Commit(); err != nil {
		return models.Entry{}, fmt.Errorf("failed to commit update: %w", err)
	}
	return e, nil
}

func (r *SQLEntryRepository) Delete(ctx context.Context, userID, id int) error {
	query := r.dialect.Rebind(`DELETE FROM journal_entries WHERE id = ? AND user_id = ?`)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}
