//go:build integration

package jobs_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"deck-server/internal/domain"
	"deck-server/internal/jobs"
)

type RedisStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcredis.RedisContainer
	client    *redis.Client
	store     *jobs.RedisStore
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.container, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	host, err := s.container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := s.container.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(s.T(), s.client.Ping(s.ctx).Err())

	s.store = jobs.NewRedisStore(s.client, time.Minute, zap.NewNop())
}

func (s *RedisStoreSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *RedisStoreSuite) SetupTest() {
	require.NoError(s.T(), s.client.FlushDB(s.ctx).Err())
}

func (s *RedisStoreSuite) TestSaveAndGet() {
	t := s.T()
	now := time.Now().UTC().Truncate(time.Millisecond)
	job := domain.GenerationJob{
		ID:             uuid.New(),
		UserID:         "user-1",
		PresentationID: "p-1",
		Status:         domain.JobStatusFailed,
		Message:        "Presentation generation failed",
		Error:          &domain.JobError{StatusCode: 504, Detail: "context deadline exceeded"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, s.store.Save(s.ctx, job))

	got, err := s.store.Get(s.ctx, job.ID)
	require.NoError(t, err)
	s.Equal(job.ID, got.ID)
	s.Equal(job.Status, got.Status)
	s.Equal(job.Error, got.Error)
	s.True(job.CreatedAt.Equal(got.CreatedAt))

	ttl, err := s.client.TTL(s.ctx, "deck:job:"+job.ID.String()).Result()
	require.NoError(t, err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, uuid.New())
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *RedisStoreSuite) TestManagerReadsFinishedJobAfterCleanup() {
	t := s.T()
	m := jobs.NewManager(jobs.Config{MaxActive: 1}, s.store)

	job, err := m.Submit(s.ctx, "user-1", "p-1", func(ctx context.Context, _ jobs.Progress) (any, error) {
		return map[string]string{"presentation_id": "p-1"}, nil
	})
	require.NoError(t, err)
	require.NoError(t, m.Shutdown(s.ctx))

	m.Cleanup(-time.Second)
	got, err := m.Get(s.ctx, job.ID)
	require.NoError(t, err)
	s.Equal(domain.JobStatusCompleted, got.Status)
	s.Equal(map[string]any{"presentation_id": "p-1"}, got.Result)
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Fatalf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Fatalf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(RedisStoreSuite))
}
