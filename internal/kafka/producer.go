package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// BookingEvent is published on every booking lifecycle transition and
// mirrored onto the notifications topic for the email worker.
type BookingEvent struct {
	Type             string `json:"type"`
	BookingID        int64  `json:"booking_id"`
	BookingReference string `json:"booking_reference"`
	PrebookingID     string `json:"prebooking_id,omitempty"`
	Product          string `json:"product"`
	Email            string `json:"email"`
	Status           string `json:"status"`
	PaymentStatus    string `json:"payment_status"`
	TotalCents       int64  `json:"total_cents"`
	Currency         string `json:"currency"`
}

// PaymentEvent is what the payment collaborator emits back; it carries
// a status only, never a price.
type PaymentEvent struct {
	BookingID int64  `json:"booking_id"`
	Status    string `json:"status"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
