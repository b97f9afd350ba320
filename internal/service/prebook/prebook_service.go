package prebook

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skazar/farelock/internal/domain"
	"github.com/skazar/farelock/internal/fares"
	"github.com/skazar/farelock/internal/pricing"
)

type PrebookUseCase interface {
	Lock(ctx context.Context, input LockInput) (*domain.Prebooking, error)
	Get(ctx context.Context, id string) (*domain.Prebooking, error)
}

// Store is the ephemeral lock storage the service runs on.
type Store interface {
	SavePrebooking(ctx context.Context, pb *domain.Prebooking) error
	GetPrebooking(ctx context.Context, id string) (*domain.Prebooking, error)
	GetQuote(ctx context.Context, ref string) (*domain.FareQuote, error)
	SetQuote(ctx context.Context, quote *domain.FareQuote) error
}

type LockInput struct {
	FareQuoteRef   string                  `json:"fare_quote_ref"`
	PassengerCount int                     `json:"passenger_count"`
	Options        []domain.SelectedOption `json:"options"`
}

type Service struct {
	store  Store
	fares  fares.Gateway
	pricer *pricing.Calculator
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

type ServiceOption func(*Service)

// WithClock overrides the service clock. Tests use it to pin time.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, gateway fares.Gateway, pricer *pricing.Calculator, ttl time.Duration, logger *logrus.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		fares:  gateway,
		pricer: pricer,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lock quotes the fare, computes the authoritative breakdown and stores
// a new prebooking valid for exactly the configured TTL.
func (s *Service) Lock(ctx context.Context, input LockInput) (*domain.Prebooking, error) {
	if input.FareQuoteRef == "" {
		return nil, &domain.InvalidRequestError{Reason: "fare quote ref is required"}
	}
	if input.PassengerCount <= 0 {
		return nil, &domain.InvalidRequestError{Reason: "passenger count must be positive"}
	}

	quote, err := s.quote(ctx, input.FareQuoteRef)
	if err != nil {
		return nil, err
	}

	price, err := s.pricer.Compute(quote, input.PassengerCount, input.Options)
	if err != nil {
		return nil, err
	}

	now := s.now()
	pb := &domain.Prebooking{
		ID:               uuid.NewString(),
		BookingReference: newReference(),
		FareQuoteRef:     input.FareQuoteRef,
		PassengerCount:   input.PassengerCount,
		Options:          input.Options,
		Itinerary: domain.Itinerary{
			Origin:        quote.Origin,
			Destination:   quote.Destination,
			DepartureDate: quote.DepartureDate,
			ReturnDate:    quote.ReturnDate,
			Carrier:       quote.Carrier,
			FareClass:     quote.FareClass,
		},
		Price:     price,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.SavePrebooking(ctx, pb); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"prebooking_id": pb.ID,
		"reference":     pb.BookingReference,
		"total_cents":   price.TotalCents,
		"expires_at":    pb.ExpiresAt,
	}).Info("price locked")
	return pb, nil
}

// Get is read-only and never extends the TTL.
func (s *Service) Get(ctx context.Context, id string) (*domain.Prebooking, error) {
	return s.store.GetPrebooking(ctx, id)
}

func (s *Service) quote(ctx context.Context, ref string) (*domain.FareQuote, error) {
	if cached, err := s.store.GetQuote(ctx, ref); err == nil && cached != nil {
		return cached, nil
	}
	quote, err := s.fares.Quote(ctx, ref)
	if err != nil {
		return nil, err
	}
	_ = s.store.SetQuote(ctx, quote)
	return quote, nil
}

// newReference builds the human-readable booking reference, e.g. FL-3F9A2C.
func newReference() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("FL-%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return "FL-" + string(buf)
}

var _ PrebookUseCase = (*Service)(nil)
