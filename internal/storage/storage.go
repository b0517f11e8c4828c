// Package storage opens the configured backend for admins and events.
package storage

import (
	"context"
	"fmt"

	"github.com/planora-events/server/internal/config"
	"github.com/planora-events/server/internal/domain/admins"
	"github.com/planora-events/server/internal/domain/events"
	"github.com/planora-events/server/internal/storage/memory"
	"github.com/planora-events/server/internal/storage/mongo"
)

// Backend groups the repositories of one store with its lifecycle.
type Backend struct {
	Admins admins.Repository
	Events events.Repository

	ping  func(context.Context) error
	close func(context.Context) error
}

func (b *Backend) Ping(ctx context.Context) error { return b.ping(ctx) }

func (b *Backend) Close(ctx context.Context) error { return b.close(ctx) }

// Open connects to the store named by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Backend, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		store := memory.New()
		return &Backend{
			Admins: store.Admins(),
			Events: store.Events(),
			ping:   store.Ping,
			close:  store.Close,
		}, nil
	case config.StoreMongo, "":
		store, err := mongo.Connect(ctx, cfg.URI, cfg.Name, cfg.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Admins: store.Admins(),
			Events: store.Events(),
			ping:   store.Ping,
			close:  store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
