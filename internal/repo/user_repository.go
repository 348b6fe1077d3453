package repo

import (
	"context"

	"github.com/JesseBremer/journal-mate/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, id int) (models.User, error)
	Count(ctx context.Context) (int, error)
}
