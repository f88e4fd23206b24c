package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each slot under "<prefix>:<slot>". Every client configured
// with the same prefix shares one session.
type RedisBackend struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisBackend creates a backend on client. A zero ttl stores slots without
// expiry.
func NewRedisBackend(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = "gc"
	}
	return &RedisBackend{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (b *RedisBackend) key(slot Slot) string {
	return b.prefix + ":" + string(slot)
}

// Load implements [Backend] with a single MGET.
func (b *RedisBackend) Load(ctx context.Context, slots ...Slot) (map[Slot][]byte, error) {
	if len(slots) == 0 {
		return map[Slot][]byte{}, nil
	}

	keys := make([]string, len(slots))
	for i, slot := range slots {
		keys[i] = b.key(slot)
	}

	values, err := b.redis.MGet(ctx, keys...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[Slot][]byte{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	out := make(map[Slot][]byte, len(slots))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		out[slots[i]] = []byte(s)
	}
	return out, nil
}

// Apply implements [Backend] inside MULTI/EXEC. A conditional mutation WATCHes the
// token key so a concurrent login aborts the transaction.
func (b *RedisBackend) Apply(ctx context.Context, m Mutation) error {
	if m.IfToken == "" {
		_, err := b.redis.TxPipelined(ctx, b.pipeline(ctx, m))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil
	}

	tokenKey := b.key(SlotToken)
	err := b.redis.Watch(ctx, func(tx *redis.Tx) error {
		token, err := tx.Get(ctx, tokenKey).Bytes()
		present := true
		if errors.Is(err, redis.Nil) {
			present = false
		} else if err != nil {
			return err
		}
		if !m.allows(token, present) {
			return ErrTokenChanged
		}
		_, err = tx.TxPipelined(ctx, b.pipeline(ctx, m))
		return err
	}, tokenKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTokenChanged), errors.Is(err, redis.TxFailedErr):
		return ErrTokenChanged
	default:
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
}

func (b *RedisBackend) pipeline(ctx context.Context, m Mutation) func(redis.Pipeliner) error {
	return func(pipe redis.Pipeliner) error {
		if len(m.Delete) > 0 {
			keys := make([]string, len(m.Delete))
			for i, slot := range m.Delete {
				keys[i] = b.key(slot)
			}
			pipe.Del(ctx, keys...)
		}
		for slot, v := range m.Set {
			pipe.Set(ctx, b.key(slot), v, b.ttl)
		}
		return nil
	}
}
