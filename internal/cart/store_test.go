package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

// memStorage is an in-memory Storage used by the store tests.
type memStorage struct {
	carts    map[string]models.Cart
	saveErr  error
	loadErr  error
	saveCall int
}

func newMemStorage() *memStorage {
	return &memStorage{carts: make(map[string]models.Cart)}
}

func (m *memStorage) Load(_ context.Context, sessionID string) (models.Cart, error) {
	if m.loadErr != nil {
		return models.Cart{}, m.loadErr
	}
	cart, ok := m.carts[sessionID]
	if !ok {
		return models.Cart{}, ErrCartNotFound
	}
	return cart, nil
}

func (m *memStorage) Save(_ context.Context, cart models.Cart) error {
	m.saveCall++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[cart.SessionID] = cart
	return nil
}

func (m *memStorage) Delete(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

func price(v float64) *float64 { return &v }

func TestAddMergesByProductID(t *testing.T) {
	store := NewStore(newMemStorage())
	ctx := context.Background()

	store.Add(ctx, "s1", Product{ID: "p1", Name: "Rice", UnitPrice: 80}, 2)
	snap := store.Add(ctx, "s1", Product{ID: "p1", Name: "Rice", UnitPrice: 80}, 3)

	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 5, snap.Lines[0].Quantity)
	assert.Equal(t, 5, snap.Count())
	assert.Equal(t, 400.0, snap.Total())
}

func TestAddKeepsDistinctProductsInOrder(t *testing.T) {
	store := NewStore(newMemStorage())
	ctx := context.Background()

	store.Add(ctx, "s1", Product{ID: "p1", Name: "Rice", UnitPrice: 80}, 1)
	snap := store.Add(ctx, "s1", Product{ID: "p2", Name: "Oil", UnitPrice: 200}, 1)

	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "p1", snap.Lines[0].ProductID)
	assert.Equal(t, "p2", snap.Lines[1].ProductID)
}

func TestTotalUsesDiscountedPrice(t *testing.T) {
	store := NewStore(newMemStorage())
	ctx := context.Background()

	snap := store.Add(ctx, "s1", Product{
		ID:                  "p1",
		Name:                "Honey",
		UnitPrice:           500,
		DiscountedUnitPrice: price(400),
	}, 2)

	assert.Equal(t, 800.0, snap.Total())
}

func TestUpdateQuantityBelowOneIsNoOp(t *testing.T) {
	store := NewStore(newMemStorage())
	ctx := context.Background()

	store.Add(ctx, "s1", Product{ID: "p1", Name: "Rice", UnitPrice: 80}, 2)

	for _, quantity := range []int{0, -1} {
		snap := store.UpdateQuantity(ctx, "s1", "p1", quantity)
		require.Len(t, snap.Lines, 1)
		assert.Equal(t, 2, snap.Lines[0].Quantity, "quantity=%d must not change the line", quantity)
	}
}

func TestUpdateQuantityReplacesQuantity(t *testing.T) {
	store := NewStore(newMemStorage())
	ctx := context.Background()

	store.Add(ctx, "s1", Product{ID: "p1", Name: "Rice", UnitPrice: 80}, 2)
	snap := store.UpdateQuantity(ctx, "s1", "p1", 7)

	assert.Equal(t, 7, snap.Lines[0].Quantity)
	assert.Equal(t, 560.0, snap.Total())
}

func TestRemoveAndClear(t *testing.T) {
	store := NewStore(newMemStorage())
	ctx := context.Background()

	store.Add(ctx, "s1", Product{ID: "p1", Name: "Rice", UnitPrice: 80}, 2)
	store.Add(ctx, "s1", Product{ID: "p2", Name: "Oil", UnitPrice: 200}, 1)

	snap := store.Remove(ctx, "s1", "p1")
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "p2", snap.Lines[0].ProductID)

	snap = store.Clear(ctx, "s1")
	assert.True(t, snap.IsEmpty())
	assert.Equal(t, 0.0, snap.Total())
	assert.Equal(t, 0, snap.Count())
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewStore(newMemStorage())
	ctx := context.Background()

	store.Add(ctx, "s1", Product{ID: "p1", Name: "Rice", UnitPrice: 80}, 1)
	snap := store.Get(ctx, "s2")

	assert.True(t, snap.IsEmpty())
}

func TestSubscriberSeesEveryMutation(t *testing.T) {
	store := NewStore(newMemStorage())
	ctx := context.Background()

	var seen []int
	cancel := store.Subscribe("s1", func(snap models.Cart) {
		seen = append(seen, snap.Count())
	})

	store.Add(ctx, "s1", Product{ID: "p1", Name: "Rice", UnitPrice: 80}, 2)
	store.UpdateQuantity(ctx, "s1", "p1", 5)
	store.Clear(ctx, "s1")

	require.Equal(t, []int{2, 5, 0}, seen)

	cancel()
	store.Add(ctx, "s1", Product{ID: "p1", Name: "Rice", UnitPrice: 80}, 1)
	assert.Len(t, seen, 3, "cancelled subscriber must not be notified")
}

func TestStorageFailureDegradesToMemory(t *testing.T) {
	storage := newMemStorage()
	storage.saveErr = errors.New("mongo down")
	store := NewStore(storage)
	ctx := context.Background()

	snap := store.Add(ctx, "s1", Product{ID: "p1", Name: "Rice", UnitPrice: 80}, 2)
	require.Len(t, snap.Lines, 1)

	// Mutations keep working against the in-memory cart.
	snap = store.UpdateQuantity(ctx, "s1", "p1", 4)
	assert.Equal(t, 4, snap.Lines[0].Quantity)
	assert.Greater(t, storage.saveCall, 0)
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	storage := newMemStorage()
	storage.loadErr = errors.New("mongo down")
	store := NewStore(storage)

	snap := store.Get(context.Background(), "s1")
	assert.True(t, snap.IsEmpty())
}

func TestGetLoadsPersistedCartOnFirstTouch(t *testing.T) {
	storage := newMemStorage()
	storage.carts["s1"] = models.Cart{
		SessionID: "s1",
		Lines:     []models.CartLine{{ProductID: "p1", Name: "Rice", UnitPrice: 80, Quantity: 3}},
	}
	store := NewStore(storage)

	snap := store.Get(context.Background(), "s1")
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 3, snap.Count())
	assert.Equal(t, 240.0, snap.Total())
}
