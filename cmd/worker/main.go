package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/skazar/farelock/config"
	"github.com/skazar/farelock/internal/cache"
	"github.com/skazar/farelock/internal/email"
	"github.com/skazar/farelock/internal/kafka"
	"github.com/skazar/farelock/internal/pricing"
	"github.com/skazar/farelock/internal/repository"
	"github.com/skazar/farelock/internal/service/booking"
	"github.com/skazar/farelock/internal/service/checkout"
)

// The worker owns everything asynchronous: payment collaborator events
// driving payment_status, notification emails, and the sweep that
// cancels committed bookings whose payment never arrived.
func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	retention := time.Duration(cfg.Booking.PrebookingRetentionMinutes) * time.Minute
	quoteTTL := time.Duration(cfg.Booking.QuoteCacheTTLSeconds) * time.Second
	store := cache.NewRedisStore(cfg.Redis, retention, quoteTTL)

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	pricer := pricing.NewCalculator(cfg.Pricing.TaxRate, cfg.Pricing.FeeRate, cfg.Pricing.Options)
	signer := checkout.NewSigner(cfg.Signer.Secret)
	bookingRepo := repository.NewBookingRepository(pool)
	bookingSvc := booking.NewService(
		bookingRepo,
		store,
		signer,
		pricer,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.CheckoutWindowMinutes)*time.Minute,
		time.Duration(cfg.Booking.UnpaidCancelHours)*time.Hour,
		cfg.Booking.Currency,
		logger,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	paymentsConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.PaymentsTopic)
	defer paymentsConsumer.Close()

	notificationsConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-mail", cfg.Kafka.NotificationsTopic)
	defer notificationsConsumer.Close()

	emailSender := email.NewSender(logger)

	go func() {
		err := paymentsConsumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.PaymentEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.WithError(err).Warn("skipping malformed payment event")
				return nil
			}
			if _, err := bookingSvc.ApplyPaymentUpdate(ctx, event); err != nil {
				logger.WithError(err).WithField("booking_id", event.BookingID).Error("apply payment update")
			}
			return nil
		})
		if err != nil {
			logger.WithError(err).Info("payments consumer stopped")
		}
	}()

	go func() {
		err := notificationsConsumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.WithError(err).Warn("skipping malformed notification event")
				return nil
			}
			return emailSender.Send(ctx, event)
		})
		if err != nil {
			logger.WithError(err).Info("notifications consumer stopped")
		}
	}()

	sweep := time.NewTicker(time.Duration(cfg.Worker.SweepMinutes) * time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-sweep.C:
			cancelled, err := bookingSvc.CancelUnpaidBookings(ctx)
			if err != nil {
				logger.WithError(err).Error("cancel unpaid bookings sweep")
				continue
			}
			if len(cancelled) > 0 {
				logger.WithField("count", len(cancelled)).Info("cancelled unpaid bookings")
			}
		case <-ctx.Done():
			logger.Info("worker shutting down")
			return
		}
	}
}
