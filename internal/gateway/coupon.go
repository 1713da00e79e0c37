package gateway

import (
	"context"
	"net/http"

	"storefront/internal/models"
)

// CouponClient validates coupon codes against the coupon endpoint.
type CouponClient struct {
	api *Client
}

func NewCouponClient(api *Client) *CouponClient {
	return &CouponClient{api: api}
}

// Validate submits {couponCode, totalAmount} and returns the resolved coupon.
// The discount comes back as a flat amount already checked against the
// subtotal; invalid or expired codes surface as an APIError with the
// endpoint's message.
func (c *CouponClient) Validate(ctx context.Context, code string, subtotal float64) (models.Coupon, error) {
	body := map[string]any{
		"couponCode":  code,
		"totalAmount": subtotal,
	}

	var coupon models.Coupon
	if err := c.api.Do(ctx, http.MethodPost, "/coupons/validate", body, "", &coupon); err != nil {
		return models.Coupon{}, err
	}
	return coupon, nil
}
