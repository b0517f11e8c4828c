package admins_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/planora-events/server/internal/auth"
	"github.com/planora-events/server/internal/domain/admins"
	"github.com/planora-events/server/internal/storage/memory"
	"github.com/planora-events/server/internal/validation"
)

func newService(t *testing.T) (*admins.Service, *auth.JWTManager) {
	t.Helper()
	tokens := auth.NewJWTManager("test-secret-test-secret-test-secret", time.Hour, "planora-test")
	svc := admins.NewService(memory.New().Admins(), auth.NewHasher(bcrypt.MinCost), tokens, zerolog.Nop())
	return svc, tokens
}

func TestSignupReturnsPublicView(t *testing.T) {
	svc, _ := newService(t)

	view, err := svc.Signup(context.Background(), admins.SignupInput{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@x.com",
		Password:  "Aa1!aaaa",
	})
	require.NoError(t, err)
	require.NotEmpty(t, view.ID)
	require.Equal(t, "John", view.FirstName)
	require.Equal(t, "Doe", view.LastName)
	require.Equal(t, "john@x.com", view.Email)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	input := admins.SignupInput{FirstName: "John", LastName: "Doe", Email: "john@x.com", Password: "Aa1!aaaa"}

	_, err := svc.Signup(ctx, input)
	require.NoError(t, err)

	input.Email = "  JOHN@x.com "
	_, err = svc.Signup(ctx, input)
	require.ErrorIs(t, err, admins.ErrDuplicateEmail)
}

func TestSignupValidation(t *testing.T) {
	cases := []struct {
		name  string
		input admins.SignupInput
		field string
	}{
		{"bad email", admins.SignupInput{FirstName: "A", LastName: "B", Email: "nope", Password: "Aa1!aaaa"}, "email"},
		{"short password", admins.SignupInput{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "Aa1!"}, "password"},
		{"weak password", admins.SignupInput{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "aaaaaaaa"}, "password"},
		{"blank first name", admins.SignupInput{FirstName: "   ", LastName: "B", Email: "a@b.com", Password: "Aa1!aaaa"}, "firstName"},
		{"markup only last name", admins.SignupInput{FirstName: "A", LastName: "<b></b>", Email: "a@b.com", Password: "Aa1!aaaa"}, "lastName"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newService(t)
			_, err := svc.Signup(context.Background(), tc.input)
			errs, ok := validation.AsErrors(err)
			require.True(t, ok, "expected validation errors, got %v", err)
			require.Equal(t, tc.field, errs[0].Field)
		})
	}
}

func TestSignupStripsMarkupFromNames(t *testing.T) {
	svc, _ := newService(t)
	view, err := svc.Signup(context.Background(), admins.SignupInput{
		FirstName: "<script>alert(1)</script>John",
		LastName:  "Doe",
		Email:     gofakeit.Email(),
		Password:  "Aa1!aaaa",
	})
	require.NoError(t, err)
	require.Equal(t, "John", view.FirstName)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, tokens := newService(t)
	ctx := context.Background()
	email := gofakeit.Email()

	view, err := svc.Signup(ctx, admins.SignupInput{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "Aa1!aaaa"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, admins.LoginInput{Email: email, Password: "Aa1!aaaa"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, view, result.Admin)
	require.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)

	claims, err := tokens.Validate(result.Token)
	require.NoError(t, err)
	require.Equal(t, view.ID, claims.Subject)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, admins.SignupInput{FirstName: "John", LastName: "Doe", Email: "john@x.com", Password: "Aa1!aaaa"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, admins.LoginInput{Email: "john@x.com", Password: "Bb2@bbbb"})
	_, unknownEmail := svc.Login(ctx, admins.LoginInput{Email: "ghost@x.com", Password: "Aa1!aaaa"})

	require.ErrorIs(t, wrongPassword, admins.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, admins.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

type failingRepo struct{ err error }

func (r failingRepo) Create(context.Context, admins.CreateParams) (*admins.Admin, error) {
	return nil, r.err
}

func (r failingRepo) GetByEmail(context.Context, string) (*admins.Admin, error) {
	return nil, r.err
}

func TestLoginPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc := admins.NewService(failingRepo{err: boom}, auth.NewHasher(bcrypt.MinCost),
		auth.NewJWTManager("secret", time.Hour, "planora"), zerolog.Nop())

	_, err := svc.Login(context.Background(), admins.LoginInput{Email: "a@b.com", Password: "x"})
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, admins.ErrInvalidCredentials)
}

// A store that reports its own duplicate-key error after the up-front check passed.
type racingRepo struct{ failingRepo }

func (racingRepo) GetByEmail(context.Context, string) (*admins.Admin, error) {
	return nil, admins.ErrNotFound
}

func (racingRepo) Create(context.Context, admins.CreateParams) (*admins.Admin, error) {
	return nil, admins.ErrDuplicateEmail
}

func TestSignupMapsStoreDuplicate(t *testing.T) {
	svc := admins.NewService(racingRepo{}, auth.NewHasher(bcrypt.MinCost),
		auth.NewJWTManager("secret", time.Hour, "planora"), zerolog.Nop())

	_, err := svc.Signup(context.Background(), admins.SignupInput{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "Aa1!aaaa"})
	require.ErrorIs(t, err, admins.ErrDuplicateEmail)
}
