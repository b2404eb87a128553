package nudge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	redisclient "github.com/hackgods/clinical-tracker/internal/redis"
)

// RedisStore keeps each nudge state as a JSON value under "nudge:<id>".
// Updates run under a per-key lock so one session's read-modify-write is
// not interleaved with another's.
type RedisStore struct {
	client *redis.Client
	locker redisclient.Locker
}

func NewRedisStore(client *redis.Client, locker redisclient.Locker) *RedisStore {
	return &RedisStore{client: client, locker: locker}
}

func stateKey(id string) string {
	return "nudge:" + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (State, error) {
	data, err := s.client.Get(ctx, stateKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("get nudge state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode nudge state: %w", err)
	}
	return st, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode nudge state: %w", err)
	}
	if err := s.client.Set(ctx, stateKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("set nudge state: %w", err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(*State)) (State, error) {
	var updated State
	err := s.locker.WithLock(ctx, stateKey(id), func(lockCtx context.Context) error {
		st, err := s.Get(lockCtx, id)
		if err != nil {
			return err
		}
		fn(&st)
		if err := s.Set(lockCtx, id, st); err != nil {
			return err
		}
		updated = st
		return nil
	})
	if err != nil {
		return State{}, err
	}
	return updated, nil
}
