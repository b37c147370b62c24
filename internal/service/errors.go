package service

import "github.com/tm-acme-shop/acme-shop-pos-terminal/internal/errors"

var (
	// ErrIllegalTransition is returned for a status change the state machine does not allow,
	// including edits and payments on orders that are no longer ON GOING.
	ErrIllegalTransition = errors.New("illegal order status transition")

	// ErrNoActiveSession is returned when an edit or payment operation has no open session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSplitMismatch is returned when cash + card does not equal the order total exactly.
	ErrSplitMismatch = errors.New("cash + card must equal the order total")

	// ErrMissingItemIdentity is returned when an edited line has no server identity.
	ErrMissingItemIdentity = errors.New("order line has no order item identity")

	// ErrPaymentInProgress is returned while a completion for the same flow is in flight.
	ErrPaymentInProgress = errors.New("payment completion already in progress")
)
