package authctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Actor is the authenticated principal attached to a request context.
type Actor struct {
	UserID   snowflake.ID
	Role     string
	RegionID snowflake.ID
	BranchID snowflake.ID
	CentreID snowflake.ID
}

type actorKey struct{}

// WithActor stores the authenticated actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || actor.UserID == 0 {
		return Actor{}, false
	}
	return actor, true
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return 0, false
	}
	return actor.UserID, true
}

// HasRole reports whether the actor holds one of the given roles.
func (a Actor) HasRole(roles ...string) bool {
	for _, role := range roles {
		if strings.EqualFold(a.Role, role) {
			return true
		}
	}
	return false
}
