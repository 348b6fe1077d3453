package repo

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEntryNotFound         = errors.New("entry not found")
	ErrDuplicatedValueUnique = errors.New("duplicated value for unique field")
)

// isUniqueViolation recognises unique constraint failures from pgx and sqlite3.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
