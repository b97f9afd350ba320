package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/skazar/farelock/config"
	"github.com/skazar/farelock/internal/domain"
)

// RedisStore holds the ephemeral protocol state: prebookings, issued
// checkouts and a short-lived fare quote cache. Prebooking keys are
// retained past their expiry so a lapsed lock is reported as expired
// rather than unknown; Redis key eviction doubles as the reaper.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
	quoteTTL  time.Duration
}

func NewRedisStore(cfg config.RedisConfig, retention, quoteTTL time.Duration) *RedisStore {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return NewRedisStoreWithClient(client, retention, quoteTTL)
}

func NewRedisStoreWithClient(client *redis.Client, retention, quoteTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention, quoteTTL: quoteTTL}
}

// SavePrebooking stores a freshly created lock. SetNX enforces
// at-most-one record per prebooking id.
func (s *RedisStore) SavePrebooking(ctx context.Context, pb *domain.Prebooking) error {
	payload, err := json.Marshal(pb)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, prebookingKey(pb.ID), payload, s.retention).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("prebooking already exists: " + pb.ID)
	}
	return nil
}

// GetPrebooking never touches the TTL: holding a page open must not
// silently extend a price guarantee.
func (s *RedisStore) GetPrebooking(ctx context.Context, id string) (*domain.Prebooking, error) {
	data, err := s.client.Get(ctx, prebookingKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: prebooking %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	var pb domain.Prebooking
	if err := json.Unmarshal(data, &pb); err != nil {
		return nil, err
	}
	return &pb, nil
}

// SaveCheckoutNX records the first checkout issued for a prebooking.
// Returns false when one is already stored, in which case the caller
// re-reads and returns the stored artifact.
func (s *RedisStore) SaveCheckoutNX(ctx context.Context, ck *domain.Checkout, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(ck)
	if err != nil {
		return false, err
	}
	return s.client.SetNX(ctx, checkoutKey(ck.PrebookingID), payload, ttl).Result()
}

func (s *RedisStore) GetCheckout(ctx context.Context, prebookingID string) (*domain.Checkout, error) {
	data, err := s.client.Get(ctx, checkoutKey(prebookingID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: checkout for prebooking %s", domain.ErrNotFound, prebookingID)
		}
		return nil, err
	}
	var ck domain.Checkout
	if err := json.Unmarshal(data, &ck); err != nil {
		return nil, err
	}
	return &ck, nil
}

// GetQuote and SetQuote keep a short-lived copy of upstream quotes to
// absorb duplicate lock submissions. The checkout path always bypasses
// this cache and re-reads the live fare.
func (s *RedisStore) GetQuote(ctx context.Context, ref string) (*domain.FareQuote, error) {
	data, err := s.client.Get(ctx, quoteKey(ref)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var quote domain.FareQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (s *RedisStore) SetQuote(ctx context.Context, quote *domain.FareQuote) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, quoteKey(quote.Ref), payload, s.quoteTTL).Err()
}

func prebookingKey(id string) string {
	return "prebook:" + id
}

func checkoutKey(prebookingID string) string {
	return "checkout:" + prebookingID
}

func quoteKey(ref string) string {
	return "cache:quote:" + ref
}
