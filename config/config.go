package config

import (
	"fmt"
	"os"

	"github.com/skazar/farelock/internal/pricing"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	FareProvider FareProviderConfig `yaml:"fare_provider"`
	Booking      BookingConfig      `yaml:"booking"`
	Signer       SignerConfig       `yaml:"signer"`
	Pricing      PricingConfig      `yaml:"pricing"`
	Worker       WorkerConfig       `yaml:"worker"`
	LogLevel     string             `yaml:"log_level"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	SwaggerDir     string   `yaml:"swagger_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	PaymentsTopic      string   `yaml:"payments_topic"`
	GroupID            string   `yaml:"group_id"`
}

type FareProviderConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type BookingConfig struct {
	// PrebookTTLMinutes is the fixed validity window of a price lock.
	PrebookTTLMinutes int `yaml:"prebook_ttl_minutes"`
	// CheckoutWindowMinutes bounds how long an issued checkout stays
	// redeemable, independent of the prebooking's own TTL.
	CheckoutWindowMinutes int `yaml:"checkout_window_minutes"`
	// PriceToleranceCents is how far the recomputed total may exceed
	// the locked total before checkout fails with a price change.
	// Zero means no tolerance.
	PriceToleranceCents int64 `yaml:"price_tolerance_cents"`
	// PrebookingRetentionMinutes keeps lapsed locks around so they can
	// be reported expired instead of unknown.
	PrebookingRetentionMinutes int `yaml:"prebooking_retention_minutes"`
	QuoteCacheTTLSeconds       int `yaml:"quote_cache_ttl_seconds"`
	// UnpaidCancelHours is how long a committed booking may sit
	// payment-pending before the worker cancels it.
	UnpaidCancelHours int    `yaml:"unpaid_cancel_hours"`
	Currency          string `yaml:"currency"`
}

type SignerConfig struct {
	Secret string `yaml:"secret"`
}

type PricingConfig struct {
	TaxRate float64          `yaml:"tax_rate"`
	FeeRate float64          `yaml:"fee_rate"`
	Options []pricing.Option `yaml:"options"`
}

type WorkerConfig struct {
	SweepMinutes int `yaml:"sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// The signer secret must never ship in the config file itself.
	if env := os.Getenv("SIGNER_SECRET"); env != "" {
		cfg.Signer.Secret = env
	}
	if cfg.Signer.Secret == "" {
		return nil, fmt.Errorf("signer secret is not configured")
	}

	return &cfg, nil
}
