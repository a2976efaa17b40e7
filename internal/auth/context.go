package auth

import (
	"context"

	"github.com/dukerupert/homestock/internal/apikey"
)

type contextKey struct{}

// AuthContext describes the caller of a store request.
type AuthContext struct {
	Role apikey.Role
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// Role returns the caller's role, or "" for unauthenticated requests.
func Role(ctx context.Context) apikey.Role {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.Role
}

func IsService(ctx context.Context) bool {
	return Role(ctx) == apikey.RoleService
}
