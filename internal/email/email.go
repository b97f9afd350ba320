package email

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/skazar/farelock/internal/kafka"
)

// Sender turns booking notification events into customer email. The
// actual delivery backend is stubbed; the worker only needs the
// contract and the logging.
type Sender struct {
	logger *logrus.Logger
}

func NewSender(logger *logrus.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	s.logger.WithFields(logrus.Fields{
		"to":        event.Email,
		"type":      event.Type,
		"reference": event.BookingReference,
		"product":   event.Product,
	}).Info("sending booking email")
	return nil
}
