package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sadragit2004/sumsungmarkaz/internal/catalog"
)

type fakeCatalog struct {
	products map[string]catalog.Product
	err      error
}

func (f *fakeCatalog) Product(_ context.Context, id string) (catalog.Product, error) {
	if f.err != nil {
		return catalog.Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

// memStore round-trips carts through JSON the way the redis store does, so
// a forgotten Put shows up as a lost change in tests too.
type memStore struct {
	blobs  map[string][]byte
	putErr error
}

func newMemStore() *memStore { return &memStore{blobs: make(map[string][]byte)} }

func (m *memStore) Get(_ context.Context, sid string) (*Cart, error) {
	c := New()
	if b, ok := m.blobs[sid]; ok {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (m *memStore) Put(_ context.Context, sid string, c *Cart) error {
	if m.putErr != nil {
		return m.putErr
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.blobs[sid] = b
	return nil
}

func (m *memStore) Delete(_ context.Context, sid string) error {
	delete(m.blobs, sid)
	return nil
}

func newTestEngine(products map[string]catalog.Product) (*Engine, *fakeCatalog, *memStore) {
	cat := &fakeCatalog{products: products}
	st := newMemStore()
	return &Engine{Store: st, Catalog: cat, Log: zap.NewNop()}, cat, st
}

func twoProducts() map[string]catalog.Product {
	return map[string]catalog.Product{
		"p1": {ID: "p1", Title: "Phone", PriceCents: 1000, Active: true},
		"p2": {ID: "p2", Title: "Case", PriceCents: 500, Active: true},
	}
}

func TestEngineAddMergesRepeatedAdds(t *testing.T) {
	e, _, _ := newTestEngine(twoProducts())
	ctx := context.Background()

	require.NoError(t, e.Add(ctx, "s1", "p1", 2, ""))
	require.NoError(t, e.Add(ctx, "s1", "p1", 3, ""))

	sum, err := e.Summarize(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, sum.Items, 1)
	assert.Equal(t, 5, sum.Count)
	assert.Equal(t, 5000, sum.TotalPrice)
}

func TestEngineAddRejectsBadQuantity(t *testing.T) {
	e, _, st := newTestEngine(twoProducts())

	err := e.Add(context.Background(), "s1", "p1", 0, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, st.blobs)
}

func TestEngineAddUnknownProductLeavesCartUntouched(t *testing.T) {
	e, _, st := newTestEngine(twoProducts())
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "s1", "p1", 1, ""))
	before := st.blobs["s1"]

	err := e.Add(ctx, "s1", "ghost", 1, "")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, before, st.blobs["s1"])
}

func TestEngineOptionsMakeDistinctLines(t *testing.T) {
	e, _, _ := newTestEngine(twoProducts())
	ctx := context.Background()

	require.NoError(t, e.Add(ctx, "s1", "p1", 1, "red"))
	require.NoError(t, e.Add(ctx, "s1", "p1", 1, "blue"))

	snap, err := e.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, snap, 2)
}

func TestEngineRemoveIsIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(twoProducts())
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "s1", "p1", 2, ""))

	require.NoError(t, e.Remove(ctx, "s1", "p1", ""))
	require.NoError(t, e.Remove(ctx, "s1", "p1", ""))

	n, err := e.Count(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEngineUpdateQuantity(t *testing.T) {
	e, _, _ := newTestEngine(twoProducts())
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "s1", "p1", 2, ""))

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, e.UpdateQuantity(ctx, "s1", "p1", 4, ""))
		n, _ := e.Count(ctx, "s1")
		assert.Equal(t, 4, n)
	})

	t.Run("ZeroRemovesLine", func(t *testing.T) {
		require.NoError(t, e.UpdateQuantity(ctx, "s1", "p1", 0, ""))
		n, _ := e.Count(ctx, "s1")
		assert.Equal(t, 0, n)
	})

	t.Run("MissingLine", func(t *testing.T) {
		err := e.UpdateQuantity(ctx, "s1", "p2", 3, "")
		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestEngineTotalPrice(t *testing.T) {
	e, _, _ := newTestEngine(twoProducts())
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "s1", "p1", 2, "")) // 2 x 1000
	require.NoError(t, e.Add(ctx, "s1", "p2", 1, "")) // 1 x 500

	total, err := e.TotalPrice(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2500, total)
}

func TestEngineSnapshotShowsLivePrices(t *testing.T) {
	e, cat, _ := newTestEngine(twoProducts())
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "s1", "p1", 1, ""))

	cat.products["p1"] = catalog.Product{ID: "p1", Title: "Phone", PriceCents: 1500, Active: true}

	total, err := e.TotalPrice(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1500, total, "cart pricing is live until order creation")
}

func TestEngineSnapshotToleratesVanishedProduct(t *testing.T) {
	e, cat, _ := newTestEngine(twoProducts())
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "s1", "p1", 2, ""))
	require.NoError(t, e.Add(ctx, "s1", "p2", 1, ""))

	delete(cat.products, "p2")

	snap, err := e.Snapshot(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap, 2)

	byID := map[string]SnapshotLine{}
	for _, s := range snap {
		byID[s.ProductID] = s
	}
	assert.True(t, byID["p1"].Resolved)
	assert.False(t, byID["p2"].Resolved)
	assert.Zero(t, byID["p2"].UnitPrice)

	total, err := e.TotalPrice(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2000, total, "unresolved lines are excluded from the total")
}

func TestEngineSnapshotSurfacesCatalogFailure(t *testing.T) {
	e, cat, _ := newTestEngine(twoProducts())
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "s1", "p1", 1, ""))

	cat.err = errors.New("catalog down")
	_, err := e.Snapshot(ctx, "s1")
	assert.Error(t, err)
}

func TestEngineAddSurfacesStoreFailure(t *testing.T) {
	e, _, st := newTestEngine(twoProducts())
	st.putErr = errors.New("redis down")

	err := e.Add(context.Background(), "s1", "p1", 1, "")
	assert.Error(t, err)
}

func TestEngineClearIsIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(twoProducts())
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "s1", "p1", 1, ""))

	require.NoError(t, e.Clear(ctx, "s1"))
	require.NoError(t, e.Clear(ctx, "s1"))

	n, err := e.Count(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEngineSessionsAreIsolated(t *testing.T) {
	e, _, _ := newTestEngine(twoProducts())
	ctx := context.Background()
	require.NoError(t, e.Add(ctx, "s1", "p1", 2, ""))
	require.NoError(t, e.Add(ctx, "s2", "p2", 1, ""))

	n1, _ := e.Count(ctx, "s1")
	n2, _ := e.Count(ctx, "s2")
	assert.Equal(t, 2, n1)
	assert.Equal(t, 1, n2)
}
