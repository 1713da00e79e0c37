package checkout

import (
	"testing"

	"storefront/internal/models"
)

func TestComputeQuoteOrderOfOperations(t *testing.T) {
	rates := &Rates{InsideDhaka: 100, OutsideDhaka: 150, SurchargePercentage: 2}
	coupon := &models.Coupon{CouponID: "c1", Discount: 150}

	quote := ComputeQuote(1000, ShippingInsideDhaka, rates, coupon, PaymentBkash)

	if quote.Subtotal != 1000 {
		t.Fatalf("subtotal = %v, want 1000", quote.Subtotal)
	}
	if quote.ShippingCharge != 100 {
		t.Fatalf("shipping = %v, want 100", quote.ShippingCharge)
	}
	if quote.SubtotalAfterDiscount != 950 {
		t.Fatalf("subtotalAfterDiscount = %v, want 950", quote.SubtotalAfterDiscount)
	}
	if quote.Surcharge != 19 {
		t.Fatalf("surcharge = %v, want 19", quote.Surcharge)
	}
	if quote.GrandTotal != 969 {
		t.Fatalf("grandTotal = %v, want 969", quote.GrandTotal)
	}
}

func TestComputeQuoteLocalPickupIsFree(t *testing.T) {
	rates := &Rates{InsideDhaka: 100, OutsideDhaka: 150, SurchargePercentage: 2}

	quote := ComputeQuote(500, ShippingLocalPickup, rates, nil, PaymentCashOnDelivery)

	if quote.ShippingCharge != 0 {
		t.Fatalf("shipping = %v, want 0 for local pickup", quote.ShippingCharge)
	}
	if quote.Surcharge != 0 {
		t.Fatalf("surcharge = %v, want 0 for cash on delivery", quote.Surcharge)
	}
	if quote.GrandTotal != 500 {
		t.Fatalf("grandTotal = %v, want 500", quote.GrandTotal)
	}
}

func TestComputeQuoteClampsOversizedDiscount(t *testing.T) {
	coupon := &models.Coupon{CouponID: "big", Discount: 10000}

	quote := ComputeQuote(100, ShippingLocalPickup, nil, coupon, PaymentCashOnDelivery)

	if quote.SubtotalAfterDiscount != 0 {
		t.Fatalf("subtotalAfterDiscount = %v, want 0", quote.SubtotalAfterDiscount)
	}
	if quote.GrandTotal != 0 {
		t.Fatalf("grandTotal = %v, want 0", quote.GrandTotal)
	}
}

func TestComputeQuoteNilRatesShowsZeroShipping(t *testing.T) {
	quote := ComputeQuote(300, ShippingOutsideDhaka, nil, nil, PaymentBkash)

	if quote.ShippingCharge != 0 {
		t.Fatalf("shipping = %v, want 0 before rates load", quote.ShippingCharge)
	}
	if quote.Surcharge != 0 {
		t.Fatalf("surcharge = %v, want 0 before rates load", quote.Surcharge)
	}
}

func TestComputeQuoteSurchargeRounding(t *testing.T) {
	rates := &Rates{SurchargePercentage: 1.5}

	// 333 * 1.5% = 4.995, rounds to 5.00
	quote := ComputeQuote(333, ShippingLocalPickup, rates, nil, PaymentBkash)

	if quote.Surcharge != 5 {
		t.Fatalf("surcharge = %v, want 5", quote.Surcharge)
	}
	if quote.GrandTotal != 338 {
		t.Fatalf("grandTotal = %v, want 338", quote.GrandTotal)
	}
}

func TestShippingOptionValid(t *testing.T) {
	for _, option := range []ShippingOption{ShippingLocalPickup, ShippingInsideDhaka, ShippingOutsideDhaka} {
		if !option.Valid() {
			t.Fatalf("expected %q to be valid", option)
		}
	}
	if ShippingOption("drone").Valid() {
		t.Fatal("expected unknown option to be invalid")
	}
}
