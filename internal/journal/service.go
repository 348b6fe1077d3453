// Package journal implements the owner-scoped journal entry operations on
// top of the repositories.
package journal

import (
	"context"
	"time"

	"github.com/JesseBremer/journal-mate/internal/models"
	"github.com/JesseBremer/journal-mate/internal/repo"
	"github.com/JesseBremer/journal-mate/internal/validation"
)

// EntryInput is the client-supplied part of an entry. Content is stored
// verbatim and may hold serialized structured data.
type EntryInput struct {
	Title   string `json:"title" validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
}

type Service struct {
	entries  repo.EntryRepository
	accounts repo.AccountRepository
	stats    repo.StatsRepository
	now      func() time.Time
}

func NewService(entries repo.EntryRepository, accounts repo.AccountRepository, stats repo.StatsRepository) *Service {
	return &Service{
		entries:  entries,
		accounts: accounts,
		stats:    stats,
		now:      time.Now,
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) Create(ctx context.Context, userID int, in EntryInput) (models.Entry, error) {
	if err := validation.Struct(in); err != nil {
		return models.Entry{}, err
	}

	now := s.timestamp()
	return s.entries.Create(ctx, models.Entry{
		UserID:    userID,
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// List returns the page of entries selected by ef, newest first, together
// with the number of entries matching ef before paging.
func (s *Service) List(ctx context.Context, userID int, ef repo.EntryFilter) ([]models.Entry, int, error) {
	return s.entries.ListByUser(ctx, userID, ef)
}

func (s *Service) Get(ctx context.Context, userID, id int) (models.Entry, error) {
	return s.entries.GetByID(ctx, userID, id)
}

func (s *Service) Update(ctx context.Context, userID, id int, in EntryInput) (models.Entry, error) {
	if err := validation.Struct(in); err != nil {
		return models.Entry{}, err
	}

	return s.entries.Update(ctx, models.Entry{
		ID:        id,
		UserID:    userID,
		Title:     in.Title,
		Content:   in.Content,
		UpdatedAt: s.timestamp(),
	})
}

func (s *Service) Delete(ctx context.Context, userID, id int) error {
	return s.entries.Delete(ctx, userID, id)
}

// DeleteAccount removes the user and all of their entries in one transaction.
// Sessions are not touched here.
func (s *Service) DeleteAccount(ctx context.Context, userID int) error {
	return s.accounts.DeleteAccount(ctx, userID)
}

func (s *Service) Stats(ctx context.Context, userID int) (repo.Stats, error) {
	return s.stats.GetUserStats(ctx, userID, s.timestamp())
}
