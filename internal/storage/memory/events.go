package memory

import (
	"context"

	"github.com/planora-events/server/internal/domain/events"
)

type eventRecord struct {
	events.Event
}

type EventRepository struct {
	store *Store
}

func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	items := make([]events.Event, 0, len(r.store.eventOrder))
	for _, id := range r.store.eventOrder {
		items = append(items, r.store.events[id].Event)
	}
	return items, nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	record, ok := r.store.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	event := record.Event
	return &event, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.timestamp()
	event := events.Event{
		ID:        r.store.newID(),
		Name:      params.Name,
		Location:  params.Location,
		Date:      params.Date.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.store.events[event.ID] = eventRecord{Event: event}
	r.store.eventOrder = append(r.store.eventOrder, event.ID)
	return &event, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, params events.UpdateParams) (*events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	record, ok := r.store.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	if params.Name != nil {
		record.Name = *params.Name
	}
	if params.Location != nil {
		record.Location = *params.Location
	}
	if params.Date != nil {
		record.Date = params.Date.UTC()
	}
	record.UpdatedAt = r.store.timestamp()
	r.store.events[id] = record

	event := record.Event
	return &event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.events[id]; !ok {
		return events.ErrNotFound
	}
	delete(r.store.events, id)
	for i, existing := range r.store.eventOrder {
		if existing == id {
			r.store.eventOrder = append(r.store.eventOrder[:i], r.store.eventOrder[i+1:]...)
			break
		}
	}
	return nil
}
