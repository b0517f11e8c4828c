package admins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/planora-events/server/internal/auth"
	"github.com/planora-events/server/internal/sanitize"
	"github.com/planora-events/server/internal/validation"
	"github.com/rs/zerolog"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// PasswordHasher hashes and verifies admin passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
	CompareDummy(password string)
}

// TokenIssuer signs session tokens for an admin id.
type TokenIssuer interface {
	Generate(subject string) (string, time.Time, error)
}

type SignupInput struct {
	FirstName string `json:"firstName" label:"First name" validate:"notblank,max=100"`
	LastName  string `json:"lastName" label:"Last name" validate:"notblank,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" label:"Password" validate:"required,min=8,max=72,password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" label:"Password" validate:"required"`
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     PublicView
}

// Service implements admin signup and login.
type Service struct {
	repo     Repository
	hasher   PasswordHasher
	tokens   TokenIssuer
	validate *validation.Validator
	logger   zerolog.Logger
}

// NewService creates a new admin service instance
func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		validate: validation.New(),
		logger:   logger.With().Str("component", "admins").Logger(),
	}
}

// Signup registers a new admin and returns its public view.
func (s *Service) Signup(ctx context.Context, input SignupInput) (PublicView, error) {
	input.FirstName = sanitize.Text(input.FirstName)
	input.LastName = sanitize.Text(input.LastName)
	input.Email = sanitize.Email(input.Email)

	if err := s.validate.Struct(input); err != nil {
		return PublicView{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return PublicView{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return PublicView{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return PublicView{}, fmt.Errorf("hash password: %w", err)
	}

	admin, err := s.repo.Create(ctx, CreateParams{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return PublicView{}, ErrDuplicateEmail
		}
		return PublicView{}, fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info().Str("admin_id", admin.ID).Msg("admin signed up")
	return admin.PublicView(), nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	input.Email = sanitize.Email(input.Email)

	if err := s.validate.Struct(input); err != nil {
		return LoginResult{}, err
	}

	admin, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.hasher.CompareDummy(input.Password)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("lookup admin: %w", err)
	}

	if err := s.hasher.Compare(admin.PasswordHash, input.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("compare password: %w", err)
	}

	token, expiresAt, err := s.tokens.Generate(admin.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info().Str("admin_id", admin.ID).Msg("admin logged in")
	return LoginResult{Token: token, ExpiresAt: expiresAt, Admin: admin.PublicView()}, nil
}
