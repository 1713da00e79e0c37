package checkout

import "errors"

// ValidationError is a synchronous precondition failure. Each precondition has
// its own field and message; none of them reach the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

var (
	ErrCartEmpty = ValidationError{Field: "cart", Message: "cart is empty"}

	ErrIdentityMissing = ValidationError{Field: "identity", Message: "sign in or provide guest contact details"}
	ErrGuestName       = ValidationError{Field: "name", Message: "guest name is required"}
	ErrGuestPhone      = ValidationError{Field: "phone", Message: "guest phone is required"}
	ErrGuestAddress    = ValidationError{Field: "address", Message: "guest address is required"}

	ErrNoDeliveryAddress = ValidationError{Field: "address", Message: "no delivery address on file"}

	ErrPayerPhone    = ValidationError{Field: "payerPhone", Message: "bkash payer phone is required"}
	ErrTransactionID = ValidationError{Field: "transactionId", Message: "bkash transaction id is required"}

	ErrShippingOption = ValidationError{Field: "shippingOption", Message: "invalid shipping option"}
	ErrPaymentMethod  = ValidationError{Field: "paymentMethod", Message: "invalid payment method"}
	ErrRatesPending   = ValidationError{Field: "shippingOption", Message: "shipping rates not loaded yet"}
)

// ErrSubmitInFlight rejects a second submit while a placement request is
// already running; exactly one request reaches the order endpoint.
var ErrSubmitInFlight = errors.New("order submission already in progress")

// ErrCouponSuperseded marks a coupon validation response that arrived after a
// newer apply attempt was issued; its result is discarded.
var ErrCouponSuperseded = errors.New("coupon request superseded")

// ErrOrderRejected wraps an order placement failure with the message shown to
// the user: the collaborator's own message when it sent one, otherwise a
// generic fallback.
type ErrOrderRejected struct {
	Message string
}

func (e ErrOrderRejected) Error() string {
	return e.Message
}
