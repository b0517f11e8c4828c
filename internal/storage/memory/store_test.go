package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/planora-events/server/internal/domain/admins"
	"github.com/planora-events/server/internal/domain/events"
)

func TestAdminRepositoryUniqueEmail(t *testing.T) {
	repo := New().Admins()
	ctx := context.Background()

	created, err := repo.Create(ctx, admins.CreateParams{FirstName: "John", Email: "John@X.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.True(t, primitive.IsValidObjectID(created.ID))
	require.Equal(t, "john@x.com", created.Email)

	_, err = repo.Create(ctx, admins.CreateParams{FirstName: "Jane", Email: "john@x.com", PasswordHash: "hash"})
	require.ErrorIs(t, err, admins.ErrDuplicateEmail)

	found, err := repo.GetByEmail(ctx, "JOHN@x.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = repo.GetByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, admins.ErrNotFound)
}

func TestAdminRepositoryConcurrentSignupSameEmail(t *testing.T) {
	repo := New().Admins()
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, admins.CreateParams{Email: "race@x.com", PasswordHash: "hash"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, dup int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case err == admins.ErrDuplicateEmail:
			dup++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 9, dup)
}

func TestEventRepositoryLifecycle(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := New().WithClock(func() time.Time { return now })
	repo := store.Events()
	ctx := context.Background()

	date := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)
	first, err := repo.Create(ctx, events.CreateParams{Name: "Jazz Night", Location: "Hall A", Date: date})
	require.NoError(t, err)
	second, err := repo.Create(ctx, events.CreateParams{Name: "Book Fair", Location: "Library", Date: date})
	require.NoError(t, err)
	third, err := repo.Create(ctx, events.CreateParams{Name: "Run Club", Location: "Park", Date: date})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{first.ID, second.ID, third.ID}, ids(list))

	now = now.Add(time.Hour)
	name := "Jazz Night II"
	updated, err := repo.Update(ctx, first.ID, events.UpdateParams{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Jazz Night II", updated.Name)
	require.Equal(t, "Hall A", updated.Location)
	require.Equal(t, first.CreatedAt, updated.CreatedAt)
	require.True(t, updated.UpdatedAt.After(first.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, second.ID))
	require.ErrorIs(t, repo.Delete(ctx, second.ID), events.ErrNotFound)

	_, err = repo.Get(ctx, second.ID)
	require.ErrorIs(t, err, events.ErrNotFound)
	_, err = repo.Update(ctx, "not-an-id", events.UpdateParams{Name: &name})
	require.ErrorIs(t, err, events.ErrNotFound)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{first.ID, third.ID}, ids(list))
}

func TestEventRepositoryReturnsCopies(t *testing.T) {
	repo := New().Events()
	ctx := context.Background()

	created, err := repo.Create(ctx, events.CreateParams{Name: "Original", Location: "Here", Date: time.Now()})
	require.NoError(t, err)
	created.Name = "mutated"

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Original", got.Name)
}

func TestCanceledContext(t *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Events().List(ctx)
	require.ErrorIs(t, err, context.Canceled)
	_, err = store.Admins().GetByEmail(ctx, "a@b.c")
	require.ErrorIs(t, err, context.Canceled)
}

func ids(items []events.Event) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
