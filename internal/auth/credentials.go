package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JesseBremer/journal-mate/internal/models"
	"github.com/JesseBremer/journal-mate/internal/repo"
	"github.com/JesseBremer/journal-mate/internal/validation"
)

const (
	DefaultUsername = "example"
	DefaultPassword = "password"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type registration struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// Credentials registers users and verifies login attempts against the
// stored bcrypt hashes.
type Credentials struct {
	users repo.UserRepository
	cost  int
	now   func() time.Time
}

func NewCredentials(users repo.UserRepository, bcryptCost int) *Credentials {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Credentials{users: users, cost: bcryptCost, now: time.Now}
}

// Register validates the credentials, hashes the password and stores the
// user. A taken username yields repo.ErrDuplicatedValueUnique.
func (c *Credentials) Register(ctx context.Context, username, password string) (models.User, error) {
	if err := validation.Struct(registration{Username: username, Password: password}); err != nil {
		return models.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := c.users.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: string(hashed),
		CreatedAt:    c.now().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Verify returns the user when the password matches. Unknown usernames and
// wrong passwords both yield ErrInvalidCredentials.
func (c *Credentials) Verify(ctx context.Context, username, password string) (models.User, error) {
	user, err := c.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureDefaultUser creates the example account when no users exist yet.
// It reports whether the account was created.
func (c *Credentials) EnsureDefaultUser(ctx context.Context) (bool, error) {
	n, err := c.users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	if _, err := c.Register(ctx, DefaultUsername, DefaultPassword); err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
