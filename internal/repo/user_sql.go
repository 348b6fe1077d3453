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

type SQLUserRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewSQLUserRepository(database *sql.DB, dialect db.Dialect) *SQLUserRepository {
	return &SQLUserRepository{db: database, dialect: dialect}
}

func (r *SQLUserRepository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	query := r.dialect.Rebind(`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?) RETURNING id`)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, u.Username, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicatedValueUnique
		}
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	query := r.dialect.Rebind(`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`)
	return r.getOne(ctx, query, username)
}

func (r *SQLUserRepository) GetByID(ctx context.Context, id int) (models.User, error) {
	query := r.dialect.Rebind(`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`)
	return r.getOne(ctx, query, id)
}

func (r *SQLUserRepository) getOne(ctx context.Context, query string, arg any) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func (r *SQLUserRepository) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
