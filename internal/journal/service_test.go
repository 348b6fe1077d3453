package journal

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JesseBremer/journal-mate/internal/models"
	"github.com/JesseBremer/journal-mate/internal/repo"
	"github.com/JesseBremer/journal-mate/internal/validation"
)

type testEnv struct {
	svc     *Service
	users   *repo.InMemoryUserRepository
	entries *repo.InMemoryEntryRepository
	clock   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := repo.NewInMemoryUserRepository()
	entries := repo.NewInMemoryEntryRepository()
	env := &testEnv{
		users:   users,
		entries: entries,
		clock:   time.Date(2025, 3, 10, 8, 30, 0, 123456789, time.UTC),
	}
	env.svc = NewService(entries, repo.NewInMemoryAccountRepository(users, entries), repo.NewInMemoryStatsRepository(entries))
	env.svc.now = func() time.Time { return env.clock }
	return env
}

func (e *testEnv) user(t *testing.T, name string) models.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), models.User{Username: name, PasswordHash: "x", CreatedAt: e.clock})
	require.NoError(t, err)
	return u
}

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	fields := []string{}
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	return fields
}

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.user(t, "alice")

	content := `{"type":"flowform","categories":{"mood":"calm"}}`
	created, err := env.svc.Create(ctx, u.ID, EntryInput{Title: "Morning", Content: content})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, u.ID, created.UserID)
	assert.Equal(t, content, created.Content)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))
	assert.Zero(t, created.CreatedAt.Nanosecond()%1000, "timestamps are truncated to microseconds")

	got, err := env.svc.Get(ctx, u.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "alice")

	tests := []struct {
		name   string
		in     EntryInput
		fields []string
	}{
		{name: "empty title", in: EntryInput{Content: "text"}, fields: []string{"title"}},
		{name: "whitespace content", in: EntryInput{Title: "t", Content: " \t\n"}, fields: []string{"content"}},
		{name: "both empty", in: EntryInput{}, fields: []string{"title", "content"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Create(context.Background(), u.ID, tt.in)
			assert.ElementsMatch(t, tt.fields, validationFields(t, err))
		})
	}

	list, total, err := env.svc.List(context.Background(), u.ID, repo.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.user(t, "alice")

	created, err := env.svc.Create(ctx, u.ID, EntryInput{Title: "a", Content: "b"})
	require.NoError(t, err)

	updated, err := env.svc.Update(ctx, u.ID, created.ID, EntryInput{Title: "a2", Content: "b2"})
	require.NoError(t, err)
	assert.Equal(t, "a2", updated.Title)
	assert.Equal(t, "b2", updated.Content)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updated_at must increase even when the clock has not moved")

	env.clock = env.clock.Add(time.Minute)
	again, err := env.svc.Update(ctx, u.ID, created.ID, EntryInput{Title: "a3", Content: "b3"})
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt.Equal(env.clock.Truncate(time.Microsecond)))

	_, err = env.svc.Update(ctx, u.ID, created.ID, EntryInput{Title: "", Content: "b"})
	assert.Equal(t, []string{"title"}, validationFields(t, err))

	_, err = env.svc.Update(ctx, u.ID, created.ID+100, EntryInput{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, repo.ErrEntryNotFound)
}

func TestService_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	entry, err := env.svc.Create(ctx, alice.ID, EntryInput{Title: "private", Content: "mine"})
	require.NoError(t, err)

	_, err = env.svc.Get(ctx, bob.ID, entry.ID)
	assert.ErrorIs(t, err, repo.ErrEntryNotFound)

	_, err = env.svc.Update(ctx, bob.ID, entry.ID, EntryInput{Title: "hijack", Content: "x"})
	assert.ErrorIs(t, err, repo.ErrEntryNotFound)

	err = env.svc.Delete(ctx, bob.ID, entry.ID)
	assert.ErrorIs(t, err, repo.ErrEntryNotFound)

	got, err := env.svc.Get(ctx, alice.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.user(t, "alice")

	entry, err := env.svc.Create(ctx, u.ID, EntryInput{Title: "a", Content: "b"})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, u.ID, entry.ID))
	_, err = env.svc.Get(ctx, u.ID, entry.ID)
	assert.ErrorIs(t, err, repo.ErrEntryNotFound)
	assert.ErrorIs(t, env.svc.Delete(ctx, u.ID, entry.ID), repo.ErrEntryNotFound)
}

func TestService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	for range make([]struct{}, 3) {
		_, err := env.svc.Create(ctx, alice.ID, EntryInput{Title: "a", Content: "b"})
		require.NoError(t, err)
	}
	_, err := env.svc.Create(ctx, bob.ID, EntryInput{Title: "keep", Content: "me"})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteAccount(ctx, alice.ID))

	list, total, err := env.entries.ListByUser(ctx, alice.ID, repo.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)

	_, err = env.users.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, repo.ErrUserNotFound)

	_, total, err = env.entries.ListByUser(ctx, bob.ID, repo.EntryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	assert.ErrorIs(t, env.svc.DeleteAccount(ctx, alice.ID), repo.ErrUserNotFound)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.user(t, "alice")

	stats, err := env.svc.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalEntries)
	assert.Nil(t, stats.FirstEntryAt)

	start := env.clock
	env.clock = start.Add(-10 * 24 * time.Hour)
	_, err = env.svc.Create(ctx, u.ID, EntryInput{Title: "old", Content: "x"})
	require.NoError(t, err)
	env.clock = start.Add(-time.Hour)
	_, err = env.svc.Create(ctx, u.ID, EntryInput{Title: "recent", Content: "y"})
	require.NoError(t, err)
	env.clock = start

	stats, err = env.svc.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.EntriesLast7Days)
	require.NotNil(t, stats.FirstEntryAt)
	require.NotNil(t, stats.LastEntryAt)
	assert.True(t, stats.FirstEntryAt.Before(*stats.LastEntryAt))
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.user(t, "alice")

	_, err := env.svc.Create(ctx, u.ID, EntryInput{Title: "first", Content: "line one\nline two"})
	require.NoError(t, err)
	env.clock = env.clock.Add(time.Hour)
	_, err = env.svc.Create(ctx, u.ID, EntryInput{Title: "second, with comma", Content: `{"q":"a"}`})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.svc.Export(ctx, u.ID, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "second, with comma", records[1][1])
	assert.Equal(t, `{"q":"a"}`, records[1][2])
	assert.Equal(t, "line one\nline two", records[2][2])
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.user(t, "alice")

	input := "Title,Content\n" +
		"Day one,went hiking\n" +
		",missing title\n" +
		"\"Quoted, title\",\"multi\nline\"\n" +
		"no content,   \n"

	imported, rowErrors, err := env.svc.Import(ctx, u.ID, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	require.Len(t, rowErrors, 2)
	assert.Equal(t, "title", rowErrors[0].Field)
	assert.Equal(t, "row 3: title is required", rowErrors[0].Description)
	assert.Equal(t, "content", rowErrors[1].Field)
	assert.Equal(t, "row 5: content is required", rowErrors[1].Description)

	list, total, err := env.svc.List(ctx, u.ID, repo.EntryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	titles := []string{list[0].Title, list[1].Title}
	assert.ElementsMatch(t, []string{"Day one", "Quoted, title"}, titles)
}

// flakyEntries fails every Create after the first ok calls.
type flakyEntries struct {
	*repo.InMemoryEntryRepository
	ok int
}

func (f *flakyEntries) Create(ctx context.Context, e models.Entry) (models.Entry, error) {
	if f.ok == 0 {
		return models.Entry{}, errors.New("disk full")
	}
	f.ok--
	return f.InMemoryEntryRepository.Create(ctx, e)
}

func TestService_ImportKeepsRowsStoredBeforeFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.user(t, "alice")
	entries := &flakyEntries{InMemoryEntryRepository: env.entries, ok: 2}
	svc := NewService(entries, nil, nil)

	input := `title,content
one,a
,skipped
two,b
three,c
four,d
`
	imported, rowErrors, err := svc.Import(ctx, u.ID, strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 5")
	assert.Equal(t, 2, imported)
	require.Len(t, rowErrors, 1)
	assert.Equal(t, "row 3: title is required", rowErrors[0].Description)

	_, total, err := env.entries.ListByUser(ctx, u.ID, repo.EntryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestService_ImportRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing content column", input: "title,body\na,b\n"},
		{name: "broken quoting", input: "title,content\n\"unterminated,x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			u := env.user(t, "alice")

			imported, _, err := env.svc.Import(context.Background(), u.ID, strings.NewReader(tt.input))
			assert.Equal(t, []string{"file"}, validationFields(t, err))
			assert.Zero(t, imported)
		})
	}
}
