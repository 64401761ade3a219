package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"medregistry/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "wizard:session:"

	// maxUpdateRetries bounds WATCH conflict retries before giving up.
	maxUpdateRetries = 3
)

// RedisSessionStore holds wizard sessions in Redis as JSON under a TTL
// slightly longer than the registration window, so the lazy expiry check in
// the orchestrator always fires before Redis reclaims the key. Update uses
// WATCH/MULTI optimistic concurrency to keep concurrent step submissions
// from losing staged documents.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) redisKey(key string) string {
	return sessionKeyPrefix + key
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) (WizardSession, error) {
	payload, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return WizardSession{}, sentinel.ErrNotFound
	}
	if err != nil {
		return WizardSession{}, fmt.Errorf("get wizard session: %w", err)
	}

	var session WizardSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return WizardSession{}, fmt.Errorf("unmarshal wizard session: %w", err)
	}
	return session, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, session WizardSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal wizard session: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(session.Key), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("put wizard session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Update(ctx context.Context, key string, fn func(*WizardSession) error) error {
	redisKey := s.redisKey(key)

	update := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, redisKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get wizard session: %w", err)
		}

		var session WizardSession
		if err := json.Unmarshal(payload, &session); err != nil {
			return fmt.Errorf("unmarshal wizard session: %w", err)
		}
		if err := fn(&session); err != nil {
			return err
		}

		next, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal wizard session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			// KeepTTL: updates must not extend the registration window.
			pipe.Set(ctx, redisKey, next, redis.KeepTTL)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err = s.client.Watch(ctx, update, redisKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update wizard session: %w", err)
}

func (s *RedisSessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("delete wizard session: %w", err)
	}
	return nil
}
