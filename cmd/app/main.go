package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/skazar/farelock/config"
	"github.com/skazar/farelock/internal/bootstrap"
	"github.com/skazar/farelock/internal/cache"
	"github.com/skazar/farelock/internal/fares"
	"github.com/skazar/farelock/internal/kafka"
	"github.com/skazar/farelock/internal/pricing"
	"github.com/skazar/farelock/internal/repository"
	"github.com/skazar/farelock/internal/service/booking"
	"github.com/skazar/farelock/internal/service/checkout"
	"github.com/skazar/farelock/internal/service/prebook"
)

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
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	ttl := time.Duration(cfg.Booking.PrebookTTLMinutes) * time.Minute
	window := time.Duration(cfg.Booking.CheckoutWindowMinutes) * time.Minute
	retention := time.Duration(cfg.Booking.PrebookingRetentionMinutes) * time.Minute
	quoteTTL := time.Duration(cfg.Booking.QuoteCacheTTLSeconds) * time.Second

	store := cache.NewRedisStore(cfg.Redis, retention, quoteTTL)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	gateway := fares.NewHTTPGateway(cfg.FareProvider.BaseURL, time.Duration(cfg.FareProvider.TimeoutSeconds)*time.Second)
	pricer := pricing.NewCalculator(cfg.Pricing.TaxRate, cfg.Pricing.FeeRate, cfg.Pricing.Options)
	signer := checkout.NewSigner(cfg.Signer.Secret)

	bookingRepo := repository.NewBookingRepository(pool)
	prebookSvc := prebook.NewService(store, gateway, pricer, ttl, logger)
	checkoutSvc := checkout.NewService(store, gateway, pricer, signer, cfg.Booking.PriceToleranceCents, window, logger)
	bookingSvc := booking.NewService(
		bookingRepo,
		store,
		signer,
		pricer,
		producer,
		cfg.Kafka.BookingTopic,
		window,
		time.Duration(cfg.Booking.UnpaidCancelHours)*time.Hour,
		cfg.Booking.Currency,
		logger,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, logger, prebookSvc, checkoutSvc, bookingSvc); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
