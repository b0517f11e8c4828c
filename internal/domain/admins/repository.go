package admins

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("admin not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Admin is a stored administrator account. PasswordHash never leaves the
// service layer; use PublicView for responses.
type Admin struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicView is the admin as returned to API clients.
type PublicView struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (a Admin) PublicView() PublicView {
	return PublicView{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
	}
}

type CreateParams struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

// Repository persists admins. Create must return ErrDuplicateEmail when the
// email is already taken; GetByEmail returns ErrNotFound for unknown emails.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
}
