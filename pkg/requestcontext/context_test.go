package requestcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", RequestID(ctx))
}

func TestCallerIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CallerIdentity(ctx))

	ctx = WithCallerIdentity(ctx, "alice")
	assert.Equal(t, "alice", CallerIdentity(ctx))
}
