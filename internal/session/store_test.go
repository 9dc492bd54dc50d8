package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sadragit2004/sumsungmarkaz/internal/cart"
	"github.com/Sadragit2004/sumsungmarkaz/internal/redisx"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &RedisStore{RDB: rdb, TTL: time.Hour}, mr
}

func TestGetUnknownSessionReturnsEmptyCart(t *testing.T) {
	st, _ := newTestStore(t)

	c, err := st.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Count())
}

func TestPutGetRoundTrip(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	c := cart.New()
	c.Add("p1", 2, "red")
	c.Add("p2", 1, "")
	require.NoError(t, st.Put(ctx, "s1", c))

	got, err := st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, c.Lines(), got.Lines())
	assert.Equal(t, 3, got.Count())
}

func TestPutRefreshesTTL(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	c := cart.New()
	c.Add("p1", 1, "")
	require.NoError(t, st.Put(ctx, "s1", c))

	key := fmt.Sprintf(redisx.KeyCart, "s1")
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestDeleteRemovesCart(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	c := cart.New()
	c.Add("p1", 1, "")
	require.NoError(t, st.Put(ctx, "s1", c))
	require.NoError(t, st.Delete(ctx, "s1"))

	got, err := st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count())
}

func TestCorruptBlobFallsBackToEmptyCart(t *testing.T) {
	st, mr := newTestStore(t)

	key := fmt.Sprintf(redisx.KeyCart, "s1")
	require.NoError(t, mr.Set(key, "not-json"))

	c, err := st.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Count())
}
