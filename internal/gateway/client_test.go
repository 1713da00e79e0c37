package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

func TestDoDecodesSuccessResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode(map[string]any{"couponId": "c1", "discount": 150.0})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var coupon models.Coupon
	err := client.Do(context.Background(), http.MethodPost, "/coupons/validate", map[string]string{"couponCode": "X"}, "", &coupon)
	require.NoError(t, err)
	assert.Equal(t, "c1", coupon.CouponID)
	assert.Equal(t, 150.0, coupon.Discount)
}

func TestDoBusinessRejectionSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "coupon expired"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.Do(context.Background(), http.MethodPost, "/coupons/validate", nil, "", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "coupon expired", apiErr.UpstreamMessage())
}

func TestDoFallsBackToErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "already used"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.Do(context.Background(), http.MethodGet, "/anything", nil, "", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "already used", apiErr.UpstreamMessage())
}

func TestDoAttachesBearerOnlyWhenSupplied(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/company", nil, "", nil))
	assert.Empty(t, gotAuth)

	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/company", nil, "token123", nil))
	assert.Equal(t, "Bearer token123", gotAuth)
}

func TestDoServerErrorIsNotAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.Do(context.Background(), http.MethodGet, "/company", nil, "", nil)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "5xx must not surface as a business rejection")
}

func TestCouponClientValidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coupons/validate", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SAVE150", body["couponCode"])
		assert.Equal(t, 1000.0, body["totalAmount"])

		json.NewEncoder(w).Encode(map[string]any{"couponId": "c1", "discount": 150.0})
	}))
	defer server.Close()

	coupons := NewCouponClient(NewClient(server.URL))
	coupon, err := coupons.Validate(context.Background(), "SAVE150", 1000)
	require.NoError(t, err)
	assert.Equal(t, models.Coupon{CouponID: "c1", Discount: 150}, coupon)
}

func TestRatesClientCachesResult(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/company", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]float64{
			"insideDhaka":         100,
			"outsideDhaka":        150,
			"surchargePercentage": 2,
		})
	}))
	defer server.Close()

	rates := NewRatesClient(NewClient(server.URL))

	first, err := rates.Rates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.InsideDhaka)
	assert.Equal(t, 150.0, first.OutsideDhaka)
	assert.Equal(t, 2.0, first.SurchargePercentage)

	_, err = rates.Rates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second call within the TTL must hit the cache")
}
