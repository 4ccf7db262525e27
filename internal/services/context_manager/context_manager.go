package context_manager

import (
	"context"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
)

type userKey struct{}

// SetUserContext stores the authenticated user into context
func SetUserContext(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// GetUserFromContext retrieves the authenticated user, or nil
func GetUserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userKey{}).(*user.User)
	return u
}

// GetUserIDFromContext returns "anonymous" when no user is set.
func GetUserIDFromContext(ctx context.Context) string {
	if u := GetUserFromContext(ctx); u != nil {
		return u.ID
	}
	return "anonymous"
}
