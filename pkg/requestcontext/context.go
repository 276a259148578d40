// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Values are set by middleware and read by services,
// which keeps net/http out of the service layer.
package requestcontext

import "context"

type (
	requestIDKey      struct{}
	callerIdentityKey struct{}
)

// WithRequestID attaches a request correlation ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request correlation ID, or "" when absent.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithCallerIdentity attaches the caller identity resolved by the transport
// layer to the context.
func WithCallerIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, callerIdentityKey{}, identity)
}

// CallerIdentity returns the caller identity, or "" when absent.
func CallerIdentity(ctx context.Context) string {
	v, _ := ctx.Value(callerIdentityKey{}).(string)
	return v
}
