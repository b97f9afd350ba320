package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skazar/farelock/internal/domain"
	"github.com/skazar/farelock/internal/fares"
	"github.com/skazar/farelock/internal/pricing"
)

type CheckoutUseCase interface {
	Checkout(ctx context.Context, prebookingID string) (*domain.Checkout, error)
}

type Store interface {
	GetPrebooking(ctx context.Context, id string) (*domain.Prebooking, error)
	SaveCheckoutNX(ctx context.Context, ck *domain.Checkout, ttl time.Duration) (bool, error)
	GetCheckout(ctx context.Context, prebookingID string) (*domain.Checkout, error)
}

// Service re-validates a still-valid prebooking against the live
// upstream fare and issues the signed checkout artifact. Issuance is
// single-use per prebooking: repeat calls return the stored artifact
// instead of minting fresh signatures, which keeps the replay surface
// before commit as small as possible.
type Service struct {
	store     Store
	fares     fares.Gateway
	pricer    *pricing.Calculator
	signer    *Signer
	tolerance int64
	window    time.Duration
	now       func() time.Time
	logger    *logrus.Logger
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, gateway fares.Gateway, pricer *pricing.Calculator, signer *Signer, toleranceCents int64, window time.Duration, logger *logrus.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		fares:     gateway,
		pricer:    pricer,
		signer:    signer,
		tolerance: toleranceCents,
		window:    window,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Checkout(ctx context.Context, prebookingID string) (*domain.Checkout, error) {
	pb, err := s.store.GetPrebooking(ctx, prebookingID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !pb.ValidAt(now) {
		s.logger.WithField("prebooking_id", prebookingID).Info("checkout refused, prebooking expired")
		return nil, domain.ErrPrebookingExpired
	}

	if existing, err := s.store.GetCheckout(ctx, prebookingID); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// The stored breakdown is re-validated against the live fare, never
	// trusted. The quote cache is bypassed here on purpose.
	quote, err := s.fares.Quote(ctx, pb.FareQuoteRef)
	if err != nil {
		return nil, err
	}
	price, err := s.pricer.Compute(quote, pb.PassengerCount, pb.Options)
	if err != nil {
		return nil, err
	}

	if price.TotalCents > pb.Price.TotalCents+s.tolerance {
		s.logger.WithFields(logrus.Fields{
			"prebooking_id": prebookingID,
			"locked_cents":  pb.Price.TotalCents,
			"current_cents": price.TotalCents,
		}).Info("checkout refused, upstream price moved")
		return nil, &domain.PriceChangedError{NewPrice: price}
	}

	ck := &domain.Checkout{
		PrebookingID: prebookingID,
		Price:        price,
		IssuedAt:     now,
	}
	ck.Signature = s.signer.Sign(prebookingID, price.TotalCents, now)

	stored, err := s.store.SaveCheckoutNX(ctx, ck, s.window)
	if err != nil {
		return nil, err
	}
	if !stored {
		// Lost the issuance race; the winner's artifact is just as valid.
		return s.store.GetCheckout(ctx, prebookingID)
	}

	s.logger.WithFields(logrus.Fields{
		"prebooking_id": prebookingID,
		"total_cents":   price.TotalCents,
	}).Info("checkout issued")
	return ck, nil
}

var _ CheckoutUseCase = (*Service)(nil)
