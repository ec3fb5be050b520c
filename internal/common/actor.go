package common

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the authenticated caller threaded through every service call.
// Authorization is a function of (actor, action, resource) rather than
// hidden session state.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == "ADMIN" }

// IsDriver reports whether the actor has the driver role.
func (a Actor) IsDriver() bool { return a.Role == "DRIVER" }

// Is reports whether the actor is the user with the given id.
func (a Actor) Is(id uuid.UUID) bool { return a.UserID == id }

type actorContextKey struct{}

// WithActor attaches the actor to the context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, a)
}

// ActorFromContext extracts the actor set by the auth middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorContextKey{}).(Actor)
	return a, ok
}
