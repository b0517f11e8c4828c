package auth

import (
	"context"
	"time"
)

// Identity is the authenticated admin behind a request.
type Identity struct {
	AdminID   string
	ExpiresAt time.Time
}

func (i Identity) IsZero() bool {
	return i.AdminID == ""
}

type contextKeyIdentity struct{}

func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity{}, identity)
}

// IdentityFromContext returns the zero Identity when the request was not authenticated.
func IdentityFromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Identity{}
	}
	if identity, ok := ctx.Value(contextKeyIdentity{}).(Identity); ok {
		return identity
	}
	return Identity{}
}
