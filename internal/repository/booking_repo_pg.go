package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skazar/farelock/internal/domain"
)

type BookingRepository interface {
	// Create persists the booking. Returns false without error when a
	// booking for the same prebooking id already exists; the insert and
	// the uniqueness check are a single atomic statement.
	Create(ctx context.Context, booking *domain.Booking) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByPrebookingID(ctx context.Context, prebookingID string) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id int64, payment domain.PaymentStatus, status domain.BookingStatus) (*domain.Booking, error)
	CancelUnpaidBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, reference, email, phone, passengers, total_cents, currency, status, payment_status, details, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) (bool, error) {
	passengers, err := json.Marshal(booking.Passengers)
	if err != nil {
		return false, fmt.Errorf("marshal passengers: %w", err)
	}
	details, err := json.Marshal(booking.Details)
	if err != nil {
		return false, fmt.Errorf("marshal details: %w", err)
	}

	// prebooking_id is NULL for directly committed products so the
	// unique index only bites on the flight price-lock path.
	var prebookingID *string
	if booking.Details.PrebookingID != "" {
		prebookingID = &booking.Details.PrebookingID
	}

	err = r.db.QueryRow(ctx, `INSERT INTO bookings (reference, email, phone, passengers, total_cents, currency, status, payment_status, details, prebooking_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (prebooking_id) DO NOTHING
		RETURNING id, created_at, updated_at`,
		booking.Reference, booking.Contact.Email, booking.Contact.Phone, passengers,
		booking.TotalCents, booking.Currency, booking.Status, booking.PaymentStatus,
		details, prebookingID).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) GetByPrebookingID(ctx context.Context, prebookingID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE prebooking_id=$1`, prebookingID)
	return scanBooking(row)
}

func (r *PGBookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, payment domain.PaymentStatus, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET payment_status=$1, status=$2, updated_at=now() WHERE id=$3 RETURNING `+bookingColumns, payment, status, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) CancelUnpaidBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND payment_status=$3 AND created_at <= $4
		RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, domain.BookingStatusPending, domain.PaymentStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cancelled []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		cancelled = append(cancelled, *b)
	}
	return cancelled, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var passengers, details []byte
	err := row.Scan(&b.ID, &b.Reference, &b.Contact.Email, &b.Contact.Phone, &passengers,
		&b.TotalCents, &b.Currency, &b.Status, &b.PaymentStatus, &details, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(passengers, &b.Passengers); err != nil {
		return nil, fmt.Errorf("unmarshal passengers: %w", err)
	}
	if err := json.Unmarshal(details, &b.Details); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
