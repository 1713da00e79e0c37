package cart

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront/internal/models"
)

// Product is the snapshot of a catalog product supplied by the caller when a
// line is added. Stock limits are a display concern upstream; the store takes
// quantities as-is.
type Product struct {
	ID                  string
	Name                string
	UnitPrice           float64
	DiscountedUnitPrice *float64
	ImageRef            string
}

// Store is the single source of truth for cart contents, shared by every
// surface that renders the cart. Each mutation persists the cart and notifies
// the session's subscribers with a fresh snapshot. Persistence failures
// degrade to in-memory operation: logged, never surfaced.
type Store struct {
	mu      sync.Mutex
	storage Storage
	carts   map[string]*models.Cart
	subs    map[string]map[int]func(models.Cart)
	nextSub int
	group   singleflight.Group
}

func NewStore(storage Storage) *Store {
	return &Store{
		storage: storage,
		carts:   make(map[string]*models.Cart),
		subs:    make(map[string]map[int]func(models.Cart)),
	}
}

// Get returns a snapshot of the session's cart, loading it from storage on
// first touch. A missing or unreadable stored cart yields an empty one.
func (s *Store) Get(ctx context.Context, sessionID string) models.Cart {
	cart := s.load(ctx, sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(cart)
}

// Add merges a product into the cart: an existing line for the same productId
// has its quantity incremented, otherwise a new line is appended. Quantity is
// taken as-is; callers that omit it default to 1 at the HTTP layer.
func (s *Store) Add(ctx context.Context, sessionID string, p Product, quantity int) models.Cart {
	if quantity < 1 {
		quantity = 1
	}

	cart := s.load(ctx, sessionID)

	s.mu.Lock()
	merged := false
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == p.ID {
			cart.Lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Lines = append(cart.Lines, models.CartLine{
			ProductID:           p.ID,
			Name:                p.Name,
			UnitPrice:           p.UnitPrice,
			DiscountedUnitPrice: p.DiscountedUnitPrice,
			ImageRef:            p.ImageRef,
			Quantity:            quantity,
		})
	}
	cart.UpdatedAt = time.Now()
	snap := snapshot(cart)
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.notify(sessionID, snap)
	return snap
}

// UpdateQuantity sets the line's quantity. A quantity below 1 is a no-op: the
// line keeps its current quantity rather than being floored or removed.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) models.Cart {
	cart := s.load(ctx, sessionID)

	s.mu.Lock()
	changed := false
	if quantity >= 1 {
		for i := range cart.Lines {
			if cart.Lines[i].ProductID == productID {
				cart.Lines[i].Quantity = quantity
				changed = true
				break
			}
		}
	}
	if changed {
		cart.UpdatedAt = time.Now()
	}
	snap := snapshot(cart)
	s.mu.Unlock()

	if changed {
		s.persist(ctx, snap)
		s.notify(sessionID, snap)
	}
	return snap
}

// Remove deletes the line for productID; no-op when absent.
func (s *Store) Remove(ctx context.Context, sessionID, productID string) models.Cart {
	cart := s.load(ctx, sessionID)

	s.mu.Lock()
	changed := false
	lines := cart.Lines[:0]
	for _, line := range cart.Lines {
		if line.ProductID == productID {
			changed = true
			continue
		}
		lines = append(lines, line)
	}
	cart.Lines = lines
	if changed {
		cart.UpdatedAt = time.Now()
	}
	snap := snapshot(cart)
	s.mu.Unlock()

	if changed {
		s.persist(ctx, snap)
		s.notify(sessionID, snap)
	}
	return snap
}

// Clear empties the cart and persists the empty state.
func (s *Store) Clear(ctx context.Context, sessionID string) models.Cart {
	cart := s.load(ctx, sessionID)

	s.mu.Lock()
	cart.Lines = nil
	cart.UpdatedAt = time.Now()
	snap := snapshot(cart)
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.notify(sessionID, snap)
	return snap
}

// Total is the session's cart total, recomputed from current lines.
func (s *Store) Total(ctx context.Context, sessionID string) float64 {
	return s.Get(ctx, sessionID).Total()
}

// Count is the session's total unit count, recomputed from current lines.
func (s *Store) Count(ctx context.Context, sessionID string) int {
	return s.Get(ctx, sessionID).Count()
}

// Subscribe registers fn to receive a cart snapshot after every mutation of
// the session's cart. The returned function cancels the subscription.
func (s *Store) Subscribe(sessionID string, fn func(models.Cart)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[sessionID] == nil {
		s.subs[sessionID] = make(map[int]func(models.Cart))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[sessionID][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[sessionID], id)
	}
}

// load returns the in-memory cart for the session, reading it from storage on
// first touch. Concurrent cold loads for the same session are collapsed.
func (s *Store) load(ctx context.Context, sessionID string) *models.Cart {
	s.mu.Lock()
	if cart, ok := s.carts[sessionID]; ok {
		s.mu.Unlock()
		return cart
	}
	s.mu.Unlock()

	v, _, _ := s.group.Do(sessionID, func() (interface{}, error) {
		loaded, err := s.storage.Load(ctx, sessionID)
		if err != nil && err != ErrCartNotFound {
			log.Println("[CART] [WARN] load failed, starting empty:", err)
		}
		if err != nil {
			loaded = models.Cart{SessionID: sessionID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if cart, ok := s.carts[sessionID]; ok {
			return cart, nil
		}
		cart := loaded
		s.carts[sessionID] = &cart
		return &cart, nil
	})
	return v.(*models.Cart)
}

func (s *Store) persist(ctx context.Context, snap models.Cart) {
	if err := s.storage.Save(ctx, snap); err != nil {
		log.Println("[CART] [WARN] persist failed, continuing in memory:", err)
	}
}

func (s *Store) notify(sessionID string, snap models.Cart) {
	s.mu.Lock()
	fns := make([]func(models.Cart), 0, len(s.subs[sessionID]))
	for _, fn := range s.subs[sessionID] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func snapshot(cart *models.Cart) models.Cart {
	snap := *cart
	snap.Lines = make([]models.CartLine, len(cart.Lines))
	copy(snap.Lines, cart.Lines)
	return snap
}
