package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Pingu1337/QRx1/internal/model"
)

const keyPrefix = "link:"

// RedisStore реализует LinkStore поверх Redis. Страховочное окно
// обеспечивается TTL на ключе, атомарное взятие — командой GETDEL.
type RedisStore struct {
	client   *redis.Client
	backstop time.Duration
	logger   *zap.Logger
}

// NewRedisStore создаёт новый экземпляр RedisStore.
func NewRedisStore(client *redis.Client, backstop time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, backstop: backstop, logger: logger}
}

// Save сохраняет запись с TTL равным страховочному окну.
func (s *RedisStore) Save(ctx context.Context, rec *model.LinkRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal link record: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+rec.Token, data, s.backstop).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Take атомарно читает и удаляет запись одной командой GETDEL.
func (s *RedisStore) Take(ctx context.Context, token string) (*model.LinkRecord, error) {
	data, err := s.client.GetDel(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	rec := &model.LinkRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("unmarshal link record: %w", err)
	}
	return rec, nil
}

// Ping проверяет доступность Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
