package events

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("event not found")
	ErrUnauthorized = errors.New("not authorized")
)

// Event is a publicly listed event. Name and Location are stored already
// sanitized.
type Event struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateParams struct {
	Name     string
	Location string
	Date     time.Time
}

// UpdateParams carries a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Name     *string
	Location *string
	Date     *time.Time
}

func (p UpdateParams) IsEmpty() bool {
	return p.Name == nil && p.Location == nil && p.Date == nil
}

// Repository persists events. Get, Update and Delete return ErrNotFound for
// unknown or malformed ids. List returns events in insertion order.
type Repository interface {
	List(ctx context.Context) ([]Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, params CreateParams) (*Event, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Event, error)
	Delete(ctx context.Context, id string) error
}
