package checkout

import (
	"math"

	"storefront/internal/models"
)

// ShippingOption enumerates the fixed delivery choices.
type ShippingOption string

const (
	ShippingLocalPickup  ShippingOption = "localPickup"
	ShippingInsideDhaka  ShippingOption = "insideDhaka"
	ShippingOutsideDhaka ShippingOption = "outsideDhaka"
)

func (o ShippingOption) Valid() bool {
	switch o {
	case ShippingLocalPickup, ShippingInsideDhaka, ShippingOutsideDhaka:
		return true
	}
	return false
}

// PaymentMethod enumerates the supported payment choices. Bkash carries a
// percentage processing fee; cash on delivery is free.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cashOnDelivery"
	PaymentBkash          PaymentMethod = "bkash"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCashOnDelivery || m == PaymentBkash
}

// Rates is the externally configured shipping and surcharge table. Local
// pickup is always free and has no entry.
type Rates struct {
	InsideDhaka         float64
	OutsideDhaka        float64
	SurchargePercentage float64
}

// Quote is the full monetary breakdown shown at checkout.
type Quote struct {
	Subtotal              float64 `json:"subtotal"`
	ShippingCharge        float64 `json:"shippingCharge"`
	Discount              float64 `json:"discount"`
	SubtotalAfterDiscount float64 `json:"subtotalAfterDiscount"`
	Surcharge             float64 `json:"surcharge"`
	GrandTotal            float64 `json:"grandTotal"`
}

// ShippingCharge resolves the charge for an option. A nil rates table means
// the configuration has not loaded yet; paid options then display as 0 and
// submission is blocked elsewhere.
func ShippingCharge(option ShippingOption, rates *Rates) float64 {
	if rates == nil {
		return 0
	}
	switch option {
	case ShippingInsideDhaka:
		return rates.InsideDhaka
	case ShippingOutsideDhaka:
		return rates.OutsideDhaka
	default:
		return 0
	}
}

// ComputeQuote derives the checkout breakdown. The evaluation order is fixed:
// shipping is added to the subtotal before the coupon discount is subtracted,
// and the bkash surcharge applies to the discounted sum. The discounted sum is
// clamped at zero so an oversized coupon cannot produce a negative total.
func ComputeQuote(subtotal float64, option ShippingOption, rates *Rates, coupon *models.Coupon, method PaymentMethod) Quote {
	shipping := ShippingCharge(option, rates)

	discount := 0.0
	if coupon != nil {
		discount = coupon.Discount
	}

	afterDiscount := subtotal + shipping - discount
	if afterDiscount < 0 {
		afterDiscount = 0
	}

	surcharge := 0.0
	if method == PaymentBkash && rates != nil {
		surcharge = round2(afterDiscount * rates.SurchargePercentage / 100)
	}

	return Quote{
		Subtotal:              subtotal,
		ShippingCharge:        shipping,
		Discount:              discount,
		SubtotalAfterDiscount: afterDiscount,
		Surcharge:             surcharge,
		GrandTotal:            afterDiscount + surcharge,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
