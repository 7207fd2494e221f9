package repositories

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestVisitorCounter_IncrTotalsAndDays(t *testing.T) {
	srv, client := newRedis(t)
	c := VisitorCounter{Client: client}
	ctx := context.Background()

	_, err := c.Incr(ctx, "2026-11-19")
	require.NoError(t, err)
	_, err = c.Incr(ctx, "2026-11-20")
	require.NoError(t, err)
	v, err := c.Incr(ctx, "2026-11-20")
	require.NoError(t, err)

	assert.Equal(t, int64(3), v.Total)
	assert.Equal(t, int64(2), v.Today)
	assert.True(t, srv.TTL(visitorsDayKey+"2026-11-20") > 0)
}

func TestVisitorCounter_GetMissingIsZero(t *testing.T) {
	_, client := newRedis(t)
	c := VisitorCounter{Client: client}

	v, err := c.Get(context.Background(), "2026-11-20")

	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Total)
	assert.Equal(t, int64(0), v.Today)
	assert.Equal(t, "2026-11-20", v.Day)
}

func TestVisitorCounter_NilClientIsNoop(t *testing.T) {
	v, err := VisitorCounter{}.Incr(context.Background(), "2026-11-20")

	require.NoError(t, err)
	assert.Equal(t, "2026-11-20", v.Day)
}
