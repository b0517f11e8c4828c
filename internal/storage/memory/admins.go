package memory

import (
	"context"
	"strings"

	"github.com/planora-events/server/internal/domain/admins"
)

type adminRecord struct {
	admins.Admin
}

type AdminRepository struct {
	store *Store
}

func (r *AdminRepository) Create(ctx context.Context, params admins.CreateParams) (*admins.Admin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := strings.ToLower(params.Email)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.admins[key]; exists {
		return nil, admins.ErrDuplicateEmail
	}
	admin := admins.Admin{
		ID:           r.store.newID(),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        key,
		PasswordHash: params.PasswordHash,
		CreatedAt:    r.store.timestamp(),
	}
	r.store.admins[key] = adminRecord{Admin: admin}
	return &admin, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*admins.Admin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	record, ok := r.store.admins[strings.ToLower(email)]
	if !ok {
		return nil, admins.ErrNotFound
	}
	admin := record.Admin
	return &admin, nil
}
