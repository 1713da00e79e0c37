package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"storefront/internal/checkout"
)

const ratesCacheTTL = 5 * time.Minute

// RatesClient fetches the company shipping/surcharge configuration and caches
// it briefly; the table changes rarely and every quote needs it.
type RatesClient struct {
	api     *Client
	mu      sync.Mutex
	cached  *checkout.Rates
	fetched time.Time
}

func NewRatesClient(api *Client) *RatesClient {
	return &RatesClient{api: api}
}

// Rates returns the configured shipping charges and surcharge percentage.
func (r *RatesClient) Rates(ctx context.Context) (*checkout.Rates, error) {
	r.mu.Lock()
	if r.cached != nil && time.Since(r.fetched) < ratesCacheTTL {
		cached := *r.cached
		r.mu.Unlock()
		return &cached, nil
	}
	r.mu.Unlock()

	var payload struct {
		InsideDhaka         float64 `json:"insideDhaka"`
		OutsideDhaka        float64 `json:"outsideDhaka"`
		SurchargePercentage float64 `json:"surchargePercentage"`
	}
	if err := r.api.Do(ctx, http.MethodGet, "/company", nil, "", &payload); err != nil {
		return nil, err
	}

	rates := checkout.Rates{
		InsideDhaka:         payload.InsideDhaka,
		OutsideDhaka:        payload.OutsideDhaka,
		SurchargePercentage: payload.SurchargePercentage,
	}

	r.mu.Lock()
	r.cached = &rates
	r.fetched = time.Now()
	r.mu.Unlock()

	result := rates
	return &result, nil
}
