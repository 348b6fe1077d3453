package repo

import (
	"context"

	"github.com/JesseBremer/journal-mate/internal/models"
)

// EntryRepository stores journal entries. Every lookup is scoped by owner:
// an entry owned by someone else is reported as ErrEntryNotFound.
type EntryRepository interface {
	Create(ctx context.Context, e models.Entry) (models.Entry, error)
	ListByUser(ctx context.Context, userID int, ef EntryFilter) ([]models.Entry, int, error)
	GetByID(ctx context.Context, userID, id int) (models.Entry, error)
	// Update writes title and content. e.UpdatedAt is the requested
	// timestamp; it is bumped past the stored value if the clock lags.
	Update(ctx context.Context, e models.Entry) (models.Entry, error)
	Delete(ctx context.Context, userID, id int) error
}

// AccountRepository removes a user and everything they own as one unit.
type AccountRepository interface {
	DeleteAccount(ctx context.Context, userID int) error
}
