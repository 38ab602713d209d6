package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "session:"
	userKeyPrefix = "user_sessions:"
)

// RedisStore хранит сессии в Redis с TTL. Для каждого пользователя
// ведётся множество id его сессий, чтобы закрывать их разом.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Save(ctx context.Context, s *Session, ttl time.Duration) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	userKey := userKeyPrefix + s.UserID.String()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyPrefix+s.ID.String(), payload, ttl)
		pipe.SAdd(ctx, userKey, s.ID.String())
		// множество живёт не меньше самой свежей сессии
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	payload, err := r.client.Get(ctx, keyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, s *Session) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keyPrefix+s.ID.String())
		pipe.SRem(ctx, userKeyPrefix+s.UserID.String(), s.ID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// DeleteByUser удаляет все сессии пользователя и возвращает их количество
func (r *RedisStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	userKey := userKeyPrefix + userID.String()

	ids, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, keyPrefix+id)
	}
	keys = append(keys, userKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("redis delete user sessions: %w", err)
	}

	return len(ids), nil
}
