package httpapi

import (
	"context"

	"github.com/kenkentupal/travel-registry-system/internal/policy"
)

type ctxKey int

const callerKey ctxKey = iota

// WithCaller attaches the request-scoped caller identity. The capability set
// is computed once here and read everywhere else; no handler re-derives it.
func WithCaller(ctx context.Context, c policy.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the caller attached by the auth middleware, if any.
func CallerFrom(ctx context.Context) (policy.Caller, bool) {
	c, ok := ctx.Value(callerKey).(policy.Caller)
	return c, ok
}
