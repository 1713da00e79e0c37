package models

// OrderLine is the wire shape for one ordered product. Only productId and
// quantity travel upstream; prices are re-derived by the order service.
type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// GuestContact carries the manually entered contact fields for guest checkout.
type GuestContact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// BkashPayment holds the fields required by the surcharge payment method.
type BkashPayment struct {
	PayerPhone    string `json:"payerPhone"`
	TransactionID string `json:"transactionId"`
}

// OrderDraft is the assembled, not-yet-confirmed order payload submitted to
// the order-placement endpoint. Exactly one of UserID / Guest is set.
type OrderDraft struct {
	Items           []OrderLine   `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	ShippingOption  string        `json:"shippingOption"`
	ShippingCharge  float64       `json:"shippingCharge"`
	CouponID        string        `json:"couponId,omitempty"`
	Discount        float64       `json:"discount"`
	PaymentMethod   string        `json:"paymentMethod"`
	Surcharge       float64       `json:"surcharge"`
	Total           float64       `json:"total"`
	UserID          string        `json:"userId,omitempty"`
	DeliveryAddress string        `json:"deliveryAddress,omitempty"`
	Guest           *GuestContact `json:"guest,omitempty"`
	Bkash           *BkashPayment `json:"bkash,omitempty"`
}

// Coupon is the result of validating a code against the cart subtotal. The
// discount is a flat amount already resolved server-side; it is never
// recomputed locally.
type Coupon struct {
	CouponID string  `json:"couponId"`
	Discount float64 `json:"discount"`
}
