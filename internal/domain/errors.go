package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers lookups of unknown prebookings and bookings.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable signals the fare provider could not be
	// reached. Retryable by the caller.
	ErrUpstreamUnavailable = errors.New("fare provider unavailable")

	// ErrPrebookingExpired is terminal for the flow; the caller must
	// restart from a fresh price lock.
	ErrPrebookingExpired = errors.New("prebooking expired")

	// ErrCheckoutExpired means the checkout outlived its redemption
	// window even though the signature may verify.
	ErrCheckoutExpired = errors.New("checkout expired")

	// ErrInvalidSignature is a security event: a tampered or forged
	// checkout. Nothing is persisted.
	ErrInvalidSignature = errors.New("invalid checkout signature")
)

// InvalidRequestError marks client mistakes that must not be retried
// unchanged: zero passengers, unknown option codes, missing contact.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// PriceChangedError carries the recomputed breakdown so the client can
// show the new price and ask for explicit re-confirmation. The flow
// never silently charges more than quoted.
type PriceChangedError struct {
	NewPrice PriceBreakdown
}

func (e *PriceChangedError) Error() string {
	return fmt.Sprintf("price changed: new total %d %s", e.NewPrice.TotalCents, e.NewPrice.Currency)
}

// AlreadyCommittedError is the idempotency hit on commit. It references
// the booking created by the first successful commit so a retrying
// client receives a success-shaped answer.
type AlreadyCommittedError struct {
	BookingID int64
}

func (e *AlreadyCommittedError) Error() string {
	return fmt.Sprintf("prebooking already committed as booking %d", e.BookingID)
}
