package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"medregistry/pkg/platform/sentinel"
)

const otpKeyPrefix = "auth:otp:"

// RedisOTPStore keeps challenges in redis so codes survive process restarts
// and are shared across replicas. Expiry rides on the key TTL.
type RedisOTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOTPStore(client *redis.Client, ttl time.Duration) *RedisOTPStore {
	return &RedisOTPStore{client: client, ttl: ttl}
}

func (s *RedisOTPStore) Put(ctx context.Context, phone string, ch Challenge) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	if err := s.client.Set(ctx, otpKeyPrefix+phone, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) Get(ctx context.Context, phone string) (Challenge, error) {
	payload, err := s.client.Get(ctx, otpKeyPrefix+phone).Bytes()
	if errors.Is(err, redis.Nil) {
		return Challenge{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Challenge{}, fmt.Errorf("load challenge: %w", err)
	}
	var ch Challenge
	if err := json.Unmarshal(payload, &ch); err != nil {
		return Challenge{}, fmt.Errorf("decode challenge: %w", err)
	}
	return ch, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, otpKeyPrefix+phone).Err(); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}
