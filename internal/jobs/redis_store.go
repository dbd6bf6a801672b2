package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"deck-server/internal/domain"
)

const jobKeyPrefix = "deck:job:"

// RedisStore хранит снимки задач в Redis с TTL, чтобы статус
// был доступен после рестарта и с других инстансов.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore создаёт хранилище задач.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisJobStore"),
	}
}

func jobKey(id uuid.UUID) string {
	return jobKeyPrefix + id.String()
}

// Save перезаписывает снимок задачи и продлевает TTL.
func (s *RedisStore) Save(ctx context.Context, job domain.GenerationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	if err := s.client.Set(ctx, jobKey(job.ID), data, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to save job in redis", zap.String("job_id", job.ID.String()), zap.Error(err))
		return fmt.Errorf("redis set job %s: %w", job.ID, err)
	}
	return nil
}

// Get читает снимок задачи. Отсутствующий ключ - domain.ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (domain.GenerationJob, error) {
	data, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.GenerationJob{}, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.GenerationJob{}, fmt.Errorf("redis get job %s: %w", id, err)
	}

	var job domain.GenerationJob
	if err := json.Unmarshal(data, &job); err != nil {
		return domain.GenerationJob{}, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return job, nil
}
