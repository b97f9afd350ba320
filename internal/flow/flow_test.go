package flow

import (
	"errors"
	"testing"
	"time"

	"github.com/skazar/farelock/internal/domain"
	"github.com/stretchr/testify/assert"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func lockedMachine(t *testing.T, expiresAt time.Time) *Machine {
	t.Helper()
	m := New()
	err := m.Lock(&domain.Prebooking{ID: "pb-1", ExpiresAt: expiresAt})
	assert.NoError(t, err)
	return m
}

func TestMachine_HappyPath(t *testing.T) {
	m := New()
	assert.Equal(t, StateIdle, m.State())
	assert.True(t, m.CanLock())
	assert.False(t, m.CanPay())

	assert.NoError(t, m.Lock(&domain.Prebooking{ID: "pb-1", ExpiresAt: baseTime.Add(15 * time.Minute)}))
	assert.Equal(t, StateLocked, m.State())
	assert.False(t, m.CanLock())
	assert.False(t, m.CanPay())

	assert.NoError(t, m.CheckOut(&domain.Checkout{PrebookingID: "pb-1", Signature: "sig"}))
	assert.Equal(t, StateCheckedOut, m.State())
	assert.True(t, m.CanPay())

	assert.NoError(t, m.Commit(42))
	assert.Equal(t, StateCommitted, m.State())
	assert.Equal(t, int64(42), m.BookingID())
	assert.False(t, m.CanPay())
	assert.False(t, m.CanLock())
}

func TestMachine_InvalidTransitions(t *testing.T) {
	m := New()

	assert.ErrorIs(t, m.CheckOut(&domain.Checkout{}), ErrInvalidTransition)
	assert.ErrorIs(t, m.Commit(1), ErrInvalidTransition)

	assert.NoError(t, m.Lock(&domain.Prebooking{ID: "pb-1"}))
	assert.ErrorIs(t, m.Lock(&domain.Prebooking{ID: "pb-2"}), ErrInvalidTransition)
	assert.ErrorIs(t, m.Commit(1), ErrInvalidTransition)
	assert.ErrorIs(t, m.CommitDirect(1), ErrInvalidTransition)
}

func TestMachine_Tick_ExpiresAtZero(t *testing.T) {
	m := lockedMachine(t, baseTime.Add(15*time.Minute))

	left := m.Tick(baseTime.Add(14 * time.Minute))
	assert.Equal(t, time.Minute, left)
	assert.Equal(t, StateLocked, m.State())

	left = m.Tick(baseTime.Add(15 * time.Minute))
	assert.Equal(t, time.Duration(0), left)
	assert.Equal(t, StateExpired, m.State())

	// Expired kills the forward actions but re-enables locking.
	assert.False(t, m.CanPay())
	assert.True(t, m.CanLock())
	assert.ErrorIs(t, m.CheckOut(&domain.Checkout{}), ErrInvalidTransition)
	assert.NoError(t, m.Lock(&domain.Prebooking{ID: "pb-2", ExpiresAt: baseTime.Add(30 * time.Minute)}))
}

func TestMachine_Tick_ExpiryClearsCheckout(t *testing.T) {
	m := lockedMachine(t, baseTime.Add(time.Minute))
	assert.NoError(t, m.CheckOut(&domain.Checkout{PrebookingID: "pb-1", Signature: "sig"}))

	m.Tick(baseTime.Add(2 * time.Minute))

	assert.Equal(t, StateExpired, m.State())
	assert.Nil(t, m.Checkout())
}

func TestMachine_Tick_NoCountersToDrift(t *testing.T) {
	m := lockedMachine(t, baseTime.Add(10*time.Minute))

	// Skipped and repeated ticks are harmless: the remaining time is a
	// function of the wall clock alone.
	assert.Equal(t, 7*time.Minute, m.Tick(baseTime.Add(3*time.Minute)))
	assert.Equal(t, 7*time.Minute, m.Tick(baseTime.Add(3*time.Minute)))
	assert.Equal(t, time.Minute, m.Tick(baseTime.Add(9*time.Minute)))
}

func TestMachine_Fail(t *testing.T) {
	t.Run("expiry errors reset to idle", func(t *testing.T) {
		for _, expiryErr := range []error{domain.ErrPrebookingExpired, domain.ErrCheckoutExpired} {
			m := lockedMachine(t, baseTime.Add(time.Minute))
			m.Fail(expiryErr)
			assert.Equal(t, StateIdle, m.State())
			assert.Nil(t, m.Prebooking())
		}
	})

	t.Run("other errors keep state for retry", func(t *testing.T) {
		m := lockedMachine(t, baseTime.Add(time.Minute))
		m.Fail(errors.New("connection reset"))
		assert.Equal(t, StateLocked, m.State())
		assert.NotNil(t, m.Prebooking())
	})
}

func TestMachine_CommitDirect(t *testing.T) {
	m := New()
	assert.NoError(t, m.CommitDirect(7))
	assert.Equal(t, StateCommitted, m.State())
	assert.Equal(t, int64(7), m.BookingID())
	assert.Nil(t, m.Prebooking())
}

func TestRemaining(t *testing.T) {
	expiresAt := baseTime.Add(15 * time.Minute)

	assert.Equal(t, 15*time.Minute, Remaining(baseTime, expiresAt))
	assert.Equal(t, time.Second, Remaining(expiresAt.Add(-time.Second), expiresAt))
	assert.Equal(t, time.Duration(0), Remaining(expiresAt, expiresAt))
	// Never negative, no matter how stale the clock reading is.
	assert.Equal(t, time.Duration(0), Remaining(expiresAt.Add(time.Hour), expiresAt))
}
