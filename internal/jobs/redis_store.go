package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"videogen/internal/domain"
)

const (
	defaultRedisPrefix = "videogen"
	maxUpdateAttempts  = 5
)

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore shares job records between API instances. Records live under
// <prefix>:job:<id> as JSON and the hash index under <prefix>:hash:<hash>.
// A zero TTL keeps keys until they are removed externally.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) jobKey(id string) string {
	return s.prefix + ":job:" + id
}

func (s *RedisStore) hashKey(hash string) string {
	return s.prefix + ":hash:" + hash
}

func (s *RedisStore) Put(ctx context.Context, rec domain.JobRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("jobs: marshal record: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.jobKey(rec.ID), payload, s.ttl)
		if rec.PromptHash != "" {
			pipe.Set(ctx, s.hashKey(rec.PromptHash), rec.ID, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("jobs: put %s: %w", rec.ID, err)
	}
	return nil
}

func (s *RedisStore) GetByID(ctx context.Context, id string) (domain.JobRecord, bool, error) {
	return s.load(ctx, s.client, id)
}

func (s *RedisStore) GetByHash(ctx context.Context, hash string) (domain.JobRecord, bool, error) {
	id, err := s.client.Get(ctx, s.hashKey(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.JobRecord{}, false, nil
	}
	if err != nil {
		return domain.JobRecord{}, false, fmt.Errorf("jobs: get hash %s: %w", hash, err)
	}
	rec, ok, err := s.load(ctx, s.client, id)
	if err != nil || !ok || rec.PromptHash != hash {
		return domain.JobRecord{}, false, err
	}
	return rec, true, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(*domain.JobRecord)) (domain.JobRecord, bool, error) {
	key := s.jobKey(id)
	var (
		out   domain.JobRecord
		found bool
	)
	txf := func(tx *redis.Tx) error {
		rec, ok, err := s.load(ctx, tx, id)
		if err != nil || !ok {
			found = false
			return err
		}
		fn(&rec)
		rec.ID = id
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("jobs: marshal record: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, redis.KeepTTL)
			if rec.PromptHash != "" {
				pipe.Set(ctx, s.hashKey(rec.PromptHash), id, redis.KeepTTL)
			}
			return nil
		})
		if err != nil {
			return err
		}
		out, found = rec, true
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.JobRecord{}, false, fmt.Errorf("jobs: update %s: %w", id, err)
		}
		return out, found, nil
	}
	return domain.JobRecord{}, false, fmt.Errorf("jobs: update %s: too much contention", id)
}

func (s *RedisStore) load(ctx context.Context, c stringGetter, id string) (domain.JobRecord, bool, error) {
	data, err := c.Get(ctx, s.jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.JobRecord{}, false, nil
	}
	if err != nil {
		return domain.JobRecord{}, false, fmt.Errorf("jobs: get %s: %w", id, err)
	}
	var rec domain.JobRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.JobRecord{}, false, fmt.Errorf("jobs: decode %s: %w", id, err)
	}
	return rec, true, nil
}

var _ Store = (*RedisStore)(nil)
