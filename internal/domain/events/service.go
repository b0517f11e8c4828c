package events

import (
	"context"
	"fmt"

	"github.com/planora-events/server/internal/auth"
	"github.com/planora-events/server/internal/sanitize"
	"github.com/planora-events/server/internal/validation"
	"github.com/rs/zerolog"
)

type CreateInput struct {
	Name     string `json:"name" label:"Event name" validate:"notblank,max=200"`
	Location string `json:"location" label:"Location" validate:"notblank,max=200"`
	Date     string `json:"date" validate:"required,isodate"`
}

type UpdateInput struct {
	Name     *string `json:"name,omitempty" label:"Event name" validate:"omitnil,notblank,max=200"`
	Location *string `json:"location,omitempty" label:"Location" validate:"omitnil,notblank,max=200"`
	Date     *string `json:"date,omitempty" validate:"omitnil,isodate"`
}

type Service struct {
	repo     Repository
	validate *validation.Validator
	logger   zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validation.New(),
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if items == nil {
		items = []Event{}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new event on behalf of actor.
func (s *Service) Create(ctx context.Context, input CreateInput, actor auth.Identity) (*Event, error) {
	if actor.IsZero() {
		return nil, ErrUnauthorized
	}

	input.Name = sanitize.Text(input.Name)
	input.Location = sanitize.Text(input.Location)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	date, err := validation.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Create(ctx, CreateParams{Name: input.Name, Location: input.Location, Date: date})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info().Str("event_id", event.ID).Str("admin_id", actor.AdminID).Msg("event created")
	return event, nil
}

// Update applies the supplied fields of input. An empty patch returns the
// current event unchanged.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput, actor auth.Identity) (*Event, error) {
	if actor.IsZero() {
		return nil, ErrUnauthorized
	}

	if input.Name != nil {
		name := sanitize.Text(*input.Name)
		input.Name = &name
	}
	if input.Location != nil {
		location := sanitize.Text(*input.Location)
		input.Location = &location
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	params := UpdateParams{Name: input.Name, Location: input.Location}
	if input.Date != nil {
		date, err := validation.ParseDate(*input.Date)
		if err != nil {
			return nil, err
		}
		params.Date = &date
	}

	if params.IsEmpty() {
		return s.repo.Get(ctx, id)
	}

	event, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("event_id", event.ID).Str("admin_id", actor.AdminID).Msg("event updated")
	return event, nil
}

func (s *Service) Delete(ctx context.Context, id string, actor auth.Identity) error {
	if actor.IsZero() {
		return ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("event_id", id).Str("admin_id", actor.AdminID).Msg("event deleted")
	return nil
}
