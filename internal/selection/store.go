package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"buslane/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 5

var (
	ErrSelectionNotFound = errors.New("selection not found or expired")
	ErrSelectionBusy     = errors.New("selection is being modified concurrently, retry")
)

// Store persists selections with an expiry. Update applies fn atomically; when
// fn returns an error nothing is written.
type Store interface {
	Create(ctx context.Context, sel *Selection, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Selection, error)
	Update(ctx context.Context, id string, ttl time.Duration, fn func(*Selection) error) (*Selection, error)
	Delete(ctx context.Context, id string) error
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, sel *Selection, ttl time.Duration) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}
	ok, err := s.client.SetNX(ctx, constants.BuildSelectionKey(sel.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store selection: %w", err)
	}
	if !ok {
		return fmt.Errorf("selection %s already exists", sel.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Selection, error) {
	data, err := s.client.Get(ctx, constants.BuildSelectionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSelectionNotFound
		}
		return nil, fmt.Errorf("failed to load selection: %w", err)
	}
	return decodeSelection(data)
}

// Update runs fn inside a WATCH transaction and retries when another request
// changed the selection in between.
func (s *RedisStore) Update(ctx context.Context, id string, ttl time.Duration, fn func(*Selection) error) (*Selection, error) {
	key := constants.BuildSelectionKey(id)
	var updated *Selection

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrSelectionNotFound
			}
			return err
		}
		sel, err := decodeSelection(data)
		if err != nil {
			return err
		}
		if err := fn(sel); err != nil {
			return err
		}
		out, err := json.Marshal(sel)
		if err != nil {
			return fmt.Errorf("failed to encode selection: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = sel
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrSelectionBusy
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, constants.BuildSelectionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}
	return nil
}

func decodeSelection(data []byte) (*Selection, error) {
	var sel Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil, fmt.Errorf("failed to decode selection: %w", err)
	}
	return &sel, nil
}
