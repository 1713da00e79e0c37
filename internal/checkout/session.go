package checkout

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/models"
)

// State tracks where an order submission is in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// CouponValidator validates a coupon code against the current subtotal.
type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotal float64) (models.Coupon, error)
}

// OrderPlacer submits an assembled order draft. The bearer credential is empty
// for guest orders.
type OrderPlacer interface {
	Place(ctx context.Context, draft models.OrderDraft, bearer string) error
}

// RatesSource supplies the shipping/surcharge configuration. A nil result with
// no error means the configuration is still pending.
type RatesSource interface {
	Rates(ctx context.Context) (*Rates, error)
}

// Identity describes a resolved authenticated user at submit time. The
// delivery address is the one on file; blank means none exists.
type Identity struct {
	UserID          string
	Bearer          string
	DeliveryAddress string
}

// SubmitInput carries everything the submit action needs beyond cart state.
type SubmitInput struct {
	Shipping ShippingOption
	Payment  PaymentMethod
	Identity *Identity
	Guest    *models.GuestContact
	Bkash    *models.BkashPayment
}

// Session is the per-cart checkout state: the applied coupon, the submission
// state machine, and the in-flight gate that keeps a double-clicked submit
// from placing two orders.
type Session struct {
	mu        sync.Mutex
	key       string
	store     *cart.Store
	coupons   CouponValidator
	orders    OrderPlacer
	rates     RatesSource
	state     State
	coupon    *models.Coupon
	couponGen uint64
	inFlight  bool
}

func newSession(key string, store *cart.Store, coupons CouponValidator, orders OrderPlacer, rates RatesSource) *Session {
	return &Session{
		key:     key,
		store:   store,
		coupons: coupons,
		orders:  orders,
		rates:   rates,
		state:   StateIdle,
	}
}

// State returns the current submission state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Coupon returns the currently applied coupon, or nil.
func (s *Session) Coupon() *models.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coupon == nil {
		return nil
	}
	c := *s.coupon
	return &c
}

// ApplyCoupon validates a code against the current subtotal. Success replaces
// any previously applied coupon; failure leaves it untouched. When a newer
// apply attempt was issued while this one was in flight, the late response is
// discarded and ErrCouponSuperseded is returned.
func (s *Session) ApplyCoupon(ctx context.Context, code string) (models.Coupon, error) {
	subtotal := s.store.Total(ctx, s.key)

	s.mu.Lock()
	s.couponGen++
	gen := s.couponGen
	s.mu.Unlock()

	coupon, err := s.coupons.Validate(ctx, code, subtotal)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.couponGen {
		return models.Coupon{}, ErrCouponSuperseded
	}
	if err != nil {
		// A failed attempt does not clear a previously applied coupon.
		return models.Coupon{}, err
	}
	s.coupon = &coupon
	return coupon, nil
}

// Quote computes the current checkout breakdown for display. Missing rate
// configuration is tolerated here: paid shipping shows as 0 until loaded.
func (s *Session) Quote(ctx context.Context, option ShippingOption, method PaymentMethod) Quote {
	rates, err := s.rates.Rates(ctx)
	if err != nil {
		log.Println("[CHECKOUT] [WARN] shipping rates unavailable:", err)
		rates = nil
	}
	return ComputeQuote(s.store.Total(ctx, s.key), option, rates, s.Coupon(), method)
}

// Submit runs the order submission state machine: local preconditions in a
// fixed order, then draft assembly and the placement call. Success clears the
// cart and the coupon; failure leaves both intact and returns the session to
// Idle so the user can correct and retry.
func (s *Session) Submit(ctx context.Context, in SubmitInput) (models.OrderDraft, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return models.OrderDraft{}, ErrSubmitInFlight
	}
	s.inFlight = true
	s.state = StateValidating
	coupon := s.coupon
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	snapshot := s.store.Get(ctx, s.key)

	if err := validateSubmit(snapshot, in); err != nil {
		s.setState(StateFailed)
		return models.OrderDraft{}, err
	}

	var rates *Rates
	if in.Shipping != ShippingLocalPickup {
		loaded, err := s.rates.Rates(ctx)
		if err != nil || loaded == nil {
			s.setState(StateFailed)
			return models.OrderDraft{}, ErrRatesPending
		}
		rates = loaded
	} else if loaded, err := s.rates.Rates(ctx); err == nil {
		rates = loaded
	}

	if in.Payment == PaymentBkash && rates == nil {
		s.setState(StateFailed)
		return models.OrderDraft{}, ErrRatesPending
	}

	quote := ComputeQuote(snapshot.Total(), in.Shipping, rates, coupon, in.Payment)
	draft := buildDraft(snapshot, in, coupon, quote)

	bearer := ""
	if in.Identity != nil {
		bearer = in.Identity.Bearer
	}

	s.setState(StateSubmitting)
	if err := s.orders.Place(ctx, draft, bearer); err != nil {
		s.setState(StateIdle)
		return models.OrderDraft{}, orderFailure(err)
	}

	s.setState(StateSucceeded)
	s.store.Clear(ctx, s.key)
	s.mu.Lock()
	s.coupon = nil
	s.mu.Unlock()

	if in.Identity != nil {
		log.Println("[CHECKOUT] [INFO] order placed for user:", in.Identity.UserID)
	} else {
		log.Println("[CHECKOUT] [INFO] guest order placed")
	}
	return draft, nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// handleCartChange drops the applied coupon once the cart becomes empty; the
// discount was validated against a subtotal that no longer exists. Quantity
// changes keep the coupon (the discount is not re-validated locally). The
// generation bump also discards any in-flight validation for the old cart.
func (s *Session) handleCartChange(snapshot models.Cart) {
	if !snapshot.IsEmpty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coupon != nil {
		log.Println("[CHECKOUT] [INFO] cart emptied, coupon dropped:", s.coupon.CouponID)
	}
	s.coupon = nil
	s.couponGen++
}

// validateSubmit applies the local preconditions in their fixed order,
// short-circuiting on the first failure. Nothing here touches the network.
func validateSubmit(snapshot models.Cart, in SubmitInput) error {
	if !in.Shipping.Valid() {
		return ErrShippingOption
	}
	if !in.Payment.Valid() {
		return ErrPaymentMethod
	}

	if snapshot.IsEmpty() {
		return ErrCartEmpty
	}

	switch {
	case in.Identity != nil:
		if strings.TrimSpace(in.Identity.DeliveryAddress) == "" {
			return ErrNoDeliveryAddress
		}
	case in.Guest != nil:
		if strings.TrimSpace(in.Guest.Name) == "" {
			return ErrGuestName
		}
		if strings.TrimSpace(in.Guest.Phone) == "" {
			return ErrGuestPhone
		}
		if strings.TrimSpace(in.Guest.Address) == "" {
			return ErrGuestAddress
		}
	default:
		return ErrIdentityMissing
	}

	if in.Payment == PaymentBkash {
		if in.Bkash == nil || strings.TrimSpace(in.Bkash.PayerPhone) == "" {
			return ErrPayerPhone
		}
		if strings.TrimSpace(in.Bkash.TransactionID) == "" {
			return ErrTransactionID
		}
	}
	return nil
}

func buildDraft(snapshot models.Cart, in SubmitInput, coupon *models.Coupon, quote Quote) models.OrderDraft {
	items := make([]models.OrderLine, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		items = append(items, models.OrderLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	draft := models.OrderDraft{
		Items:          items,
		Subtotal:       quote.Subtotal,
		ShippingOption: string(in.Shipping),
		ShippingCharge: quote.ShippingCharge,
		Discount:       quote.Discount,
		PaymentMethod:  string(in.Payment),
		Surcharge:      quote.Surcharge,
		Total:          quote.GrandTotal,
	}
	if coupon != nil {
		draft.CouponID = coupon.CouponID
	}
	if in.Identity != nil {
		draft.UserID = in.Identity.UserID
		draft.DeliveryAddress = in.Identity.DeliveryAddress
	} else {
		guest := *in.Guest
		guest.Name = strings.TrimSpace(guest.Name)
		guest.Phone = strings.TrimSpace(guest.Phone)
		guest.Address = strings.TrimSpace(guest.Address)
		draft.Guest = &guest
	}
	if in.Payment == PaymentBkash {
		bkash := *in.Bkash
		bkash.PayerPhone = strings.TrimSpace(bkash.PayerPhone)
		bkash.TransactionID = strings.TrimSpace(bkash.TransactionID)
		draft.Bkash = &bkash
	}
	return draft
}

// orderFailure converts a placement error into the message surfaced to the
// user: the collaborator's message verbatim when one was sent, otherwise a
// generic fallback.
func orderFailure(err error) error {
	var rejected interface{ UpstreamMessage() string }
	if errors.As(err, &rejected) && strings.TrimSpace(rejected.UpstreamMessage()) != "" {
		return ErrOrderRejected{Message: rejected.UpstreamMessage()}
	}
	log.Println("[CHECKOUT] [ERROR] order placement failed:", err)
	return ErrOrderRejected{Message: "order could not be placed, please try again"}
}
