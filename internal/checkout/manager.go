package checkout

import (
	"sync"

	"storefront/internal/cart"
)

// Manager hands out one checkout session per cart session key and keeps each
// one subscribed to its cart so coupon state tracks cart changes.
type Manager struct {
	mu       sync.Mutex
	store    *cart.Store
	coupons  CouponValidator
	orders   OrderPlacer
	rates    RatesSource
	sessions map[string]*Session
}

func NewManager(store *cart.Store, coupons CouponValidator, orders OrderPlacer, rates RatesSource) *Manager {
	return &Manager{
		store:    store,
		coupons:  coupons,
		orders:   orders,
		rates:    rates,
		sessions: make(map[string]*Session),
	}
}

// Session returns the checkout session for a cart session key, creating it on
// first use.
func (m *Manager) Session(key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[key]; ok {
		return session
	}

	session := newSession(key, m.store, m.coupons, m.orders, m.rates)
	m.store.Subscribe(key, session.handleCartChange)
	m.sessions[key] = session
	return session
}
