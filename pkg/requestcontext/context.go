// Package requestcontext provides transport-independent context accessors for
// caller-scoped values. The presentation layer attaches the acting user
// before calling the gateway; the gateway reads the actor back when emitting
// audit entries. Keeping this package free of transport dependencies lets the
// core import only what it needs.
//
// Usage in callers (set values):
//
//	ctx = requestcontext.WithActor(ctx, actor)
//
// Usage in the gateway (read values):
//
//	actor, ok := requestcontext.ActorFrom(ctx)
package requestcontext

import "context"

// Actor identifies who is performing an operation and why. All fields are
// required for an audit entry to be attributable.
type Actor struct {
	UserID    string
	UserRole  string
	IPAddress string
	UserAgent string
	Purpose   string
}

type actorKey struct{}

// WithActor stores the acting user in the context for downstream audit use.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom extracts the acting user from the context if present.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
