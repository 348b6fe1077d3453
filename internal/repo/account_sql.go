package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JesseBremer/journal-mate/internal/db"
)

type SQLAccountRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewSQLAccountRepository(database *sql.DB, dialect db.Dialect) *SQLAccountRepository {
	return &SQLAccountRepository{db: database, dialect: dialect}
}

// DeleteAccount removes the user's entries and then the user in a single
// transaction. Nothing is deleted if the user does not exist.
func (r *SQLAccountRepository) DeleteAccount(ctx context.Context, userID int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM journal_entries WHERE user_id = ?`), userID); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}

	res, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM users WHERE id = ?`), userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit account deletion: %w", err)
	}
	return nil
}
