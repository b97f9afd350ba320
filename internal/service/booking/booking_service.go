package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skazar/farelock/internal/domain"
	"github.com/skazar/farelock/internal/kafka"
	"github.com/skazar/farelock/internal/pricing"
	"github.com/skazar/farelock/internal/repository"
	"github.com/skazar/farelock/internal/service/checkout"
)

type BookingUseCase interface {
	Commit(ctx context.Context, input CommitInput) (*domain.Booking, error)
	CreateDirect(ctx context.Context, input DirectInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	ApplyPaymentUpdate(ctx context.Context, event kafka.PaymentEvent) (*domain.Booking, error)
	CancelUnpaidBookings(ctx context.Context) ([]domain.Booking, error)
}

// PrebookingStore is the slice of the lock store the commit path needs.
type PrebookingStore interface {
	GetPrebooking(ctx context.Context, id string) (*domain.Prebooking, error)
	GetCheckout(ctx context.Context, prebookingID string) (*domain.Checkout, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CommitInput struct {
	PrebookingID string             `json:"prebooking_id"`
	Signature    string             `json:"checkout_signature"`
	Passengers   []domain.Passenger `json:"passengers"`
	Contact      domain.Contact     `json:"contact"`
}

type DirectInput struct {
	Product    domain.ProductType      `json:"product"`
	Hotel      *domain.HotelDetails    `json:"hotel,omitempty"`
	Car        *domain.CarDetails      `json:"car,omitempty"`
	Train      *domain.TrainDetails    `json:"train,omitempty"`
	Package    *domain.PackageDetails  `json:"package,omitempty"`
	Options    []domain.SelectedOption `json:"options"`
	Passengers []domain.Passenger      `json:"passengers"`
	Contact    domain.Contact          `json:"contact"`
}

type Service struct {
	bookings           repository.BookingRepository
	store              PrebookingStore
	signer             *checkout.Signer
	pricer             *pricing.Calculator
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	checkoutWindow     time.Duration
	unpaidCancelAfter  time.Duration
	currency           string
	now                func() time.Time
	logger             *logrus.Logger
}

type ServiceOption func(*Service)

func WithNotificationsTopic(topic string) ServiceOption {
	return func(s *Service) { s.notificationsTopic = topic }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(
	bookings repository.BookingRepository,
	store PrebookingStore,
	signer *checkout.Signer,
	pricer *pricing.Calculator,
	producer Producer,
	bookingTopic string,
	checkoutWindow, unpaidCancelAfter time.Duration,
	currency string,
	logger *logrus.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		bookings:          bookings,
		store:             store,
		signer:            signer,
		pricer:            pricer,
		producer:          producer,
		bookingTopic:      bookingTopic,
		checkoutWindow:    checkoutWindow,
		unpaidCancelAfter: unpaidCancelAfter,
		currency:          currency,
		now:               time.Now,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Commit redeems a signed checkout into exactly one durable booking.
// The order of checks matters: nothing is persisted until the
// signature, the checkout window and the prebooking validity have all
// passed, and the insert itself is the single serialization point for
// duplicate commits.
func (s *Service) Commit(ctx context.Context, input CommitInput) (*domain.Booking, error) {
	if err := validateParty(input.Passengers, input.Contact); err != nil {
		return nil, err
	}
	if input.PrebookingID == "" || input.Signature == "" {
		return nil, &domain.InvalidRequestError{Reason: "prebooking id and checkout signature are required"}
	}

	ck, err := s.store.GetCheckout(ctx, input.PrebookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No issued checkout on record: either the window lapsed or
			// the signature was fabricated. Either way it never reaches
			// persistence.
			return nil, domain.ErrCheckoutExpired
		}
		return nil, err
	}

	if !s.signer.Verify(ck.PrebookingID, ck.Price.TotalCents, ck.IssuedAt, input.Signature) {
		s.logger.WithFields(logrus.Fields{
			"prebooking_id": input.PrebookingID,
			"event":         "signature_mismatch",
		}).Warn("commit rejected: checkout signature does not verify")
		return nil, domain.ErrInvalidSignature
	}

	now := s.now()
	if now.After(ck.IssuedAt.Add(s.checkoutWindow)) {
		return nil, domain.ErrCheckoutExpired
	}

	pb, err := s.store.GetPrebooking(ctx, input.PrebookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrPrebookingExpired
		}
		return nil, err
	}
	if !pb.ValidAt(now) {
		return nil, domain.ErrPrebookingExpired
	}

	booking := &domain.Booking{
		Reference:  pb.BookingReference,
		Contact:    input.Contact,
		Passengers: input.Passengers,
		// Copied verbatim from the checkout breakdown, never recomputed
		// from anything the client sent.
		TotalCents:    ck.Price.TotalCents,
		Currency:      ck.Price.Currency,
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Details: domain.BookingDetails{
			Product:           domain.ProductFlight,
			PrebookingID:      pb.ID,
			CheckoutSignature: ck.Signature,
			Flight:            &pb.Itinerary,
			Options:           pb.Options,
		},
	}

	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		return nil, err
	}
	if !created {
		existing, err := s.bookings.GetByPrebookingID(ctx, pb.ID)
		if err != nil {
			return nil, err
		}
		return nil, &domain.AlreadyCommittedError{BookingID: existing.ID}
	}

	s.publish(ctx, "booking_committed", booking)
	s.logger.WithFields(logrus.Fields{
		"booking_id":    booking.ID,
		"prebooking_id": pb.ID,
		"total_cents":   booking.TotalCents,
	}).Info("booking committed")
	return booking, nil
}

// CreateDirect commits a non-flight booking without the lock/checkout
// handshake; those products have no perishable price. The total is
// still computed server-side from catalog line items.
func (s *Service) CreateDirect(ctx context.Context, input DirectInput) (*domain.Booking, error) {
	if err := validateParty(input.Passengers, input.Contact); err != nil {
		return nil, err
	}
	if input.Product == domain.ProductFlight {
		return nil, &domain.InvalidRequestError{Reason: "flight bookings must go through prebook and checkout"}
	}
	details := domain.BookingDetails{
		Product: input.Product,
		Hotel:   input.Hotel,
		Car:     input.Car,
		Train:   input.Train,
		Package: input.Package,
		Options: input.Options,
	}
	if !detailsMatchProduct(details) {
		return nil, &domain.InvalidRequestError{Reason: "product details do not match product type"}
	}

	price, err := s.pricer.PriceItems(input.Options, s.currency)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		Reference:     newDirectReference(input.Product),
		Contact:       input.Contact,
		Passengers:    input.Passengers,
		TotalCents:    price.TotalCents,
		Currency:      price.Currency,
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Details:       details,
	}
	if _, err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// ApplyPaymentUpdate moves the status pair in response to the payment
// collaborator. It never touches price fields.
func (s *Service) ApplyPaymentUpdate(ctx context.Context, event kafka.PaymentEvent) (*domain.Booking, error) {
	var payment domain.PaymentStatus
	var status domain.BookingStatus
	switch domain.PaymentStatus(event.Status) {
	case domain.PaymentStatusPaid:
		payment, status = domain.PaymentStatusPaid, domain.BookingStatusConfirmed
	case domain.PaymentStatusFailed:
		payment, status = domain.PaymentStatusFailed, domain.BookingStatusCancelled
	case domain.PaymentStatusRefunded:
		payment, status = domain.PaymentStatusRefunded, domain.BookingStatusCancelled
	default:
		return nil, &domain.InvalidRequestError{Reason: "unknown payment status: " + event.Status}
	}

	updated, err := s.bookings.UpdatePaymentStatus(ctx, event.BookingID, payment, status)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_payment_"+event.Status, updated)
	return updated, nil
}

// CancelUnpaidBookings is the worker sweep: committed bookings whose
// payment never arrived are cancelled after the configured grace.
func (s *Service) CancelUnpaidBookings(ctx context.Context) ([]domain.Booking, error) {
	deadline := s.now().Add(-s.unpaidCancelAfter)
	cancelled, err := s.bookings.CancelUnpaidBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for i := range cancelled {
		s.publish(ctx, "booking_cancelled", &cancelled[i])
	}
	return cancelled, nil
}

func (s *Service) publish(ctx context.Context, eventType string, b *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:             eventType,
		BookingID:        b.ID,
		BookingReference: b.Reference,
		PrebookingID:     b.Details.PrebookingID,
		Product:          string(b.Details.Product),
		Email:            b.Contact.Email,
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		TotalCents:       b.TotalCents,
		Currency:         b.Currency,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, b.Reference, event); err != nil {
		s.logger.WithError(err).WithField("booking_id", b.ID).Warn("failed to publish booking event")
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, b.Reference, event); err != nil {
			s.logger.WithError(err).WithField("booking_id", b.ID).Warn("failed to publish notification event")
		}
	}
}

func validateParty(passengers []domain.Passenger, contact domain.Contact) error {
	if len(passengers) == 0 {
		return &domain.InvalidRequestError{Reason: "at least one passenger is required"}
	}
	if contact.Email == "" || !strings.Contains(contact.Email, "@") {
		return &domain.InvalidRequestError{Reason: "a valid contact email is required"}
	}
	return nil
}

func detailsMatchProduct(d domain.BookingDetails) bool {
	switch d.Product {
	case domain.ProductHotel:
		return d.Hotel != nil
	case domain.ProductCar:
		return d.Car != nil
	case domain.ProductTrain:
		return d.Train != nil
	case domain.ProductPackage:
		return d.Package != nil
	default:
		return false
	}
}

func newDirectReference(product domain.ProductType) string {
	prefix := strings.ToUpper(string(product))
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

var _ BookingUseCase = (*Service)(nil)
