package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLimiter_PerClient(t *testing.T) {
	l := newClientLimiter(0.001, 1, time.Minute)

	assert.True(t, l.get("10.0.0.1").Allow())
	assert.False(t, l.get("10.0.0.1").Allow())
	assert.True(t, l.get("10.0.0.2").Allow())
	assert.Equal(t, 2, l.limiters.ItemCount())
}

func TestClientLimiter_ExpiresIdleClients(t *testing.T) {
	l := newClientLimiter(0.001, 1, 50*time.Millisecond)

	require.True(t, l.get("10.0.0.1").Allow())
	require.False(t, l.get("10.0.0.1").Allow())
	require.Equal(t, 1, l.limiters.ItemCount())

	require.Eventually(t, func() bool {
		return l.limiters.ItemCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// A returning client starts with a fresh bucket.
	assert.True(t, l.get("10.0.0.1").Allow())
}

func TestNewClientLimiter_Defaults(t *testing.T) {
	l := newClientLimiter(1, 0, 0)
	assert.Equal(t, 1, l.burst)
	assert.True(t, l.get("c").Allow())
}
