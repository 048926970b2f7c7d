// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// RoleAdmin is the elevated role allowed to override workflow statuses manually.
const RoleAdmin = "admin"

// UserContext contains the authenticated actor as asserted by the identity provider.
type UserContext struct {
	UserID    string
	Email     string
	Roles     []string
	IsAdmin   bool
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has at least one of the roles.
func HasAnyRole(ctx context.Context, roles ...string) bool {
	for _, r := range roles {
		if HasRole(ctx, r) {
			return true
		}
	}
	return false
}

// IsElevated reports whether the actor may perform privileged overrides.
func IsElevated(ctx context.Context) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return u.IsAdmin || HasRole(ctx, RoleAdmin)
}
