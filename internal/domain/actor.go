package domain

import "context"

type actorKey struct{}

// WithActor returns a copy of ctx carrying the principal that performs the
// current request. The store records it as CreatedBy / ModifiedBy.
func WithActor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actorKey{}, name)
}

// ActorFrom returns the principal stored in ctx, or fallback if none is set.
func ActorFrom(ctx context.Context, fallback string) string {
	if name, ok := ctx.Value(actorKey{}).(string); ok && name != "" {
		return name
	}
	return fallback
}
