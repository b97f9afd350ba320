// Package flow implements the client-side reservation state machine:
// idle -> locked -> checked-out -> committed, with a unilateral expired
// pseudo-state once the countdown hits zero. The machine does no I/O
// and keeps no mutable counters; everything about time is derived from
// the immutable expires_at, so the countdown cannot drift.
package flow

import (
	"errors"
	"time"

	"github.com/skazar/farelock/internal/domain"
)

type State string

const (
	StateIdle       State = "idle"
	StateLocked     State = "locked"
	StateCheckedOut State = "checked_out"
	StateCommitted  State = "committed"
	StateExpired    State = "expired"
)

var ErrInvalidTransition = errors.New("invalid flow transition")

type Machine struct {
	state      State
	prebooking *domain.Prebooking
	checkout   *domain.Checkout
	bookingID  int64
}

func New() *Machine {
	return &Machine{state: StateIdle}
}

func (m *Machine) State() State                    { return m.state }
func (m *Machine) Prebooking() *domain.Prebooking  { return m.prebooking }
func (m *Machine) Checkout() *domain.Checkout      { return m.checkout }
func (m *Machine) BookingID() int64                { return m.bookingID }

// CanLock reports whether the "lock price" action is enabled.
func (m *Machine) CanLock() bool {
	return m.state == StateIdle || m.state == StateExpired
}

// CanPay reports whether the "pay" action is enabled. Only a signed
// checkout unlocks payment.
func (m *Machine) CanPay() bool {
	return m.state == StateCheckedOut
}

func (m *Machine) Lock(pb *domain.Prebooking) error {
	if !m.CanLock() {
		return ErrInvalidTransition
	}
	m.state = StateLocked
	m.prebooking = pb
	m.checkout = nil
	m.bookingID = 0
	return nil
}

func (m *Machine) CheckOut(ck *domain.Checkout) error {
	if m.state != StateLocked {
		return ErrInvalidTransition
	}
	m.state = StateCheckedOut
	m.checkout = ck
	return nil
}

func (m *Machine) Commit(bookingID int64) error {
	if m.state != StateCheckedOut {
		return ErrInvalidTransition
	}
	m.state = StateCommitted
	m.bookingID = bookingID
	return nil
}

// CommitDirect is the non-flight edge: no perishable price, so the
// flow skips locking and checkout entirely.
func (m *Machine) CommitDirect(bookingID int64) error {
	if m.state != StateIdle {
		return ErrInvalidTransition
	}
	m.state = StateCommitted
	m.bookingID = bookingID
	return nil
}

// Fail handles a server error. Expiry errors force the user back to
// idle for an explicit restart; other errors leave the state alone so
// the action can be retried.
func (m *Machine) Fail(err error) {
	if errors.Is(err, domain.ErrPrebookingExpired) || errors.Is(err, domain.ErrCheckoutExpired) {
		m.Reset()
	}
}

func (m *Machine) Reset() {
	m.state = StateIdle
	m.prebooking = nil
	m.checkout = nil
	m.bookingID = 0
}

// Tick advances the advisory countdown. When the lock has lapsed the
// machine moves to expired on its own and disables all forward actions;
// the server-side check remains the only authoritative enforcement.
func (m *Machine) Tick(now time.Time) time.Duration {
	if m.prebooking == nil || (m.state != StateLocked && m.state != StateCheckedOut) {
		return 0
	}
	left := Remaining(now, m.prebooking.ExpiresAt)
	if left == 0 {
		m.state = StateExpired
		m.checkout = nil
	}
	return left
}

// Remaining is the pure countdown function, recomputed on every tick
// from the immutable expires_at. Never negative.
func Remaining(now, expiresAt time.Time) time.Duration {
	if !now.Before(expiresAt) {
		return 0
	}
	return expiresAt.Sub(now)
}
