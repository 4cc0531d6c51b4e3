// Package principal binds the authenticated subject to a request context.
package principal

import "context"

type ctxKey struct{}

// Principal is the subject resolved from a validated bearer token.
type Principal struct {
	SubjectID string
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok && p.SubjectID != ""
}
