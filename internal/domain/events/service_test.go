package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/planora-events/server/internal/auth"
	"github.com/planora-events/server/internal/domain/events"
	"github.com/planora-events/server/internal/storage/memory"
	"github.com/planora-events/server/internal/validation"
)

var actor = auth.Identity{AdminID: "65f0c0ffee0000000000abcd"}

func newService() *events.Service {
	return events.NewService(memory.New().Events(), zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, events.CreateInput{Name: "Jazz Night", Location: "Hall A", Date: "2025-12-25"}, actor)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), created.Date)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestCreateRequiresIdentity(t *testing.T) {
	svc := newService()
	_, err := svc.Create(context.Background(), events.CreateInput{Name: "x", Location: "y", Date: "2025-01-01"}, auth.Identity{})
	require.ErrorIs(t, err, events.ErrUnauthorized)
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name    string
		input   events.CreateInput
		field   string
		message string
	}{
		{"empty name", events.CreateInput{Name: "", Location: "Hall", Date: "2025-01-01"}, "name", "Event name is required"},
		{"markup only name", events.CreateInput{Name: "<i></i>", Location: "Hall", Date: "2025-01-01"}, "name", "Event name is required"},
		{"blank location", events.CreateInput{Name: "Gig", Location: "  ", Date: "2025-01-01"}, "location", "Location is required"},
		{"missing date", events.CreateInput{Name: "Gig", Location: "Hall"}, "date", "date is required"},
		{"invalid date", events.CreateInput{Name: "Gig", Location: "Hall", Date: "next friday"}, "date", "Valid date is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newService().Create(context.Background(), tc.input, actor)
			errs, ok := validation.AsErrors(err)
			require.True(t, ok, "expected validation errors, got %v", err)
			require.Equal(t, tc.field, errs[0].Field)
			require.Equal(t, tc.message, errs[0].Message)
		})
	}
}

func TestListInsertionOrder(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	empty, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	var want []string
	for i := 0; i < 5; i++ {
		created, err := svc.Create(ctx, events.CreateInput{
			Name:     gofakeit.Sentence(3),
			Location: gofakeit.City(),
			Date:     gofakeit.FutureDate().UTC().Format(time.RFC3339),
		}, actor)
		require.NoError(t, err)
		want = append(want, created.ID)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, event := range list {
		require.Equal(t, want[i], event.ID)
	}
}

func TestUpdatePartial(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, events.CreateInput{Name: "Jazz Night", Location: "Hall A", Date: "2025-12-25"}, actor)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, events.UpdateInput{Location: strPtr("Hall B")}, actor)
	require.NoError(t, err)
	require.Equal(t, "Jazz Night", updated.Name)
	require.Equal(t, "Hall B", updated.Location)
	require.Equal(t, created.Date, updated.Date)

	updated, err = svc.Update(ctx, created.ID, events.UpdateInput{Date: strPtr("2026-01-02T20:00:00Z")}, actor)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 1, 2, 20, 0, 0, 0, time.UTC), updated.Date)
}

func TestUpdateEmptyPatchReturnsCurrent(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, events.CreateInput{Name: "Jazz Night", Location: "Hall A", Date: "2025-12-25"}, actor)
	require.NoError(t, err)

	got, err := svc.Update(ctx, created.ID, events.UpdateInput{}, actor)
	require.NoError(t, err)
	require.Equal(t, created, got)

	_, err = svc.Update(ctx, "000000000000000000000000", events.UpdateInput{}, actor)
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestUpdateValidatesSuppliedFields(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, events.CreateInput{Name: "Jazz Night", Location: "Hall A", Date: "2025-12-25"}, actor)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, events.UpdateInput{Name: strPtr("   ")}, actor)
	_, ok := validation.AsErrors(err)
	require.True(t, ok)

	_, err = svc.Update(ctx, created.ID, events.UpdateInput{Date: strPtr("garbage")}, actor)
	_, ok = validation.AsErrors(err)
	require.True(t, ok)
}

func TestUpdateMissing(t *testing.T) {
	_, err := newService().Update(context.Background(), "missing", events.UpdateInput{Name: strPtr("x")}, actor)
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestDeleteTwice(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, events.CreateInput{Name: "Jazz Night", Location: "Hall A", Date: "2025-12-25"}, actor)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, actor))
	require.ErrorIs(t, svc.Delete(ctx, created.ID, actor), events.ErrNotFound)

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, events.ErrNotFound)
}

func TestMutationsRejectAnonymous(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Update(ctx, "x", events.UpdateInput{}, auth.Identity{})
	require.ErrorIs(t, err, events.ErrUnauthorized)
	require.ErrorIs(t, svc.Delete(ctx, "x", auth.Identity{}), events.ErrUnauthorized)
}
