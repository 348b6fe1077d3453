package repo

import "context"

type InMemoryAccountRepository struct {
	users   *InMemoryUserRepository
	entries *InMemoryEntryRepository
}

func NewInMemoryAccountRepository(users *InMemoryUserRepository, entries *InMemoryEntryRepository) *InMemoryAccountRepository {
	return &InMemoryAccountRepository{users: users, entries: entries}
}

// DeleteAccount holds both repository locks (users first) so the removal of
// entries and user is observed as one step.
func (r *InMemoryAccountRepository) DeleteAccount(_ context.Context, userID int) error {
	r.users.mu.Lock()
	defer r.users.mu.Unlock()
	r.entries.mu.Lock()
	defer r.entries.mu.Unlock()

	if !r.users.deleteLocked(userID) {
		return ErrUserNotFound
	}
	r.entries.deleteByUserLocked(userID)
	return nil
}
