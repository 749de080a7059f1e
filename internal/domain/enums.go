package domain

import "strings"

// CheckoutState is the position of one browsing session in the checkout flow
type CheckoutState string

const (
	CheckoutStateCollectingCustomerInfo CheckoutState = "COLLECTING_CUSTOMER_INFO"
	CheckoutStateCollectingShipping     CheckoutState = "COLLECTING_SHIPPING"
	CheckoutStateCollectingPayment      CheckoutState = "COLLECTING_PAYMENT"
	CheckoutStateReviewing              CheckoutState = "REVIEWING"
	CheckoutStateSubmitting             CheckoutState = "SUBMITTING"
	CheckoutStateConfirmed              CheckoutState = "CONFIRMED"
	CheckoutStateFailed                 CheckoutState = "FAILED"
)

// IsValid checks if the checkout state is valid
func (s CheckoutState) IsValid() bool {
	switch s {
	case CheckoutStateCollectingCustomerInfo,
		CheckoutStateCollectingShipping,
		CheckoutStateCollectingPayment,
		CheckoutStateReviewing,
		CheckoutStateSubmitting,
		CheckoutStateConfirmed,
		CheckoutStateFailed:
		return true
	default:
		return false
	}
}

// rank orders the states along the happy path.
func (s CheckoutState) rank() int {
	switch s {
	case CheckoutStateCollectingCustomerInfo:
		return 0
	case CheckoutStateCollectingShipping:
		return 1
	case CheckoutStateCollectingPayment:
		return 2
	case CheckoutStateReviewing, CheckoutStateFailed:
		return 3
	case CheckoutStateSubmitting:
		return 4
	case CheckoutStateConfirmed:
		return 5
	default:
		return -1
	}
}

// Reached reports whether the flow has progressed at least as far as step.
func (s CheckoutState) Reached(step CheckoutState) bool {
	return s.rank() >= step.rank()
}

// IsEditable reports whether a step draft may be written in this state.
func (s CheckoutState) IsEditable() bool {
	return s != CheckoutStateSubmitting
}

// CanTransitionTo checks if a state transition is valid
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	switch s {
	case CheckoutStateSubmitting:
		return next == CheckoutStateConfirmed || next == CheckoutStateFailed
	case CheckoutStateFailed:
		return next == CheckoutStateReviewing
	}

	switch next {
	case CheckoutStateSubmitting:
		return s == CheckoutStateReviewing
	case CheckoutStateConfirmed, CheckoutStateFailed:
		return false
	case CheckoutStateCollectingCustomerInfo,
		CheckoutStateCollectingShipping,
		CheckoutStateCollectingPayment,
		CheckoutStateReviewing:
		// Going back is always allowed; going forward only one step at a time.
		return s.IsValid() && next.rank() <= s.rank()+1
	default:
		return false
	}
}

func (s CheckoutState) String() string {
	return string(s)
}

// PaymentMethod is how the shopper pays
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodCashOnDelivery PaymentMethod = "cod"
)

// ParsePaymentMethod accepts the legacy spellings of cash on delivery.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "card":
		return PaymentMethodCard, true
	case "cod", "cash", "cash_on_delivery":
		return PaymentMethodCashOnDelivery, true
	default:
		return "", false
	}
}

// OrderStatus is the status recorded on a submitted order
type OrderStatus string

const (
	OrderStatusPendingCOD OrderStatus = "pending_cod"
	OrderStatusPaid       OrderStatus = "paid"
)
