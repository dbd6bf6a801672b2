//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"deck-server/internal/database"
	"deck-server/internal/domain"
	"deck-server/internal/repository"
)

type PostgresSuite struct {
	suite.Suite
	ctx           context.Context
	container     *postgres.PostgresContainer
	pool          *pgxpool.Pool
	presentations repository.PresentationRepository
	slides        repository.SlideRepository
	webhooks      repository.WebhookRepository
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.container, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("deck_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	dsn, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pool, err = pgxpool.New(s.ctx, dsn)
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.Migrate(s.ctx, s.pool))

	logger := zap.NewNop()
	s.presentations = repository.NewPgPresentationRepository(s.pool, logger)
	s.slides = repository.NewPgSlideRepository(s.pool, logger)
	s.webhooks = repository.NewPgWebhookRepository(s.pool, logger)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "TRUNCATE TABLE slides, presentations, webhook_subscriptions")
	require.NoError(s.T(), err)
}

func (s *PostgresSuite) newPresentation(userID string) *domain.Presentation {
	p := &domain.Presentation{
		UserID:            userID,
		Content:           "Quarterly results",
		NSlides:           5,
		Language:          "English",
		Tone:              domain.ToneProfessional,
		Verbosity:         domain.VerbosityStandard,
		IncludeTitleSlide: true,
	}
	require.NoError(s.T(), s.presentations.Create(s.ctx, p))
	return p
}

func slidesOf(n int, tag string) []domain.Slide {
	out := make([]domain.Slide, n)
	for i := range out {
		out[i] = domain.Slide{
			Index:       i,
			LayoutGroup: "general",
			LayoutID:    "general:title-slide",
			Content:     map[string]any{"title": fmt.Sprintf("%s %d", tag, i)},
			SpeakerNote: "note",
		}
	}
	return out
}

func (s *PostgresSuite) TestPresentationRoundTrip() {
	t := s.T()
	p := s.newPresentation("user-1")

	p.Outlines = domain.Outline{Slides: []domain.OutlineEntry{{Content: "# Intro"}, {Content: "## Market"}}}
	p.Structure = domain.PresentationStructure{Slides: []int{0, 2}}
	p.Layout = domain.LayoutTemplate{Name: "general", Slides: []domain.SlideLayout{{ID: "general:title-slide"}}}
	p.Title = "Intro"
	require.NoError(t, s.presentations.Update(s.ctx, p))

	got, err := s.presentations.GetByID(s.ctx, p.ID)
	require.NoError(t, err)
	s.Equal(p.Outlines, got.Outlines)
	s.Equal(p.Structure, got.Structure)
	s.Equal("general", got.Layout.Name)
	s.Equal(domain.ToneProfessional, got.Tone)
	s.Equal("Intro", got.Title)

	list, err := s.presentations.ListByUser(s.ctx, "user-1", 10, 0)
	require.NoError(t, err)
	s.Len(list, 1)

	other, err := s.presentations.ListByUser(s.ctx, "user-2", 10, 0)
	require.NoError(t, err)
	s.Empty(other)
}

func (s *PostgresSuite) TestDeleteCascadesToSlides() {
	t := s.T()
	p := s.newPresentation("user-1")
	require.NoError(t, s.slides.ReplaceForPresentation(s.ctx, p.ID, slidesOf(3, "v1")))

	require.NoError(t, s.presentations.Delete(s.ctx, p.ID))
	_, err := s.presentations.GetByID(s.ctx, p.ID)
	s.ErrorIs(err, domain.ErrNotFound)

	slides, err := s.slides.ListByPresentation(s.ctx, p.ID)
	require.NoError(t, err)
	s.Empty(slides)

	s.ErrorIs(s.presentations.Delete(s.ctx, p.ID), domain.ErrNotFound)
}

func (s *PostgresSuite) TestCreateWithSlides() {
	t := s.T()
	p := &domain.Presentation{UserID: "user-1", Content: "Roadmap", NSlides: 3, Language: "English",
		Tone: domain.ToneDefault, Verbosity: domain.VerbosityStandard}
	require.NoError(t, s.presentations.CreateWithSlides(s.ctx, p, slidesOf(3, "v1")))

	got, err := s.presentations.GetByID(s.ctx, p.ID)
	require.NoError(t, err)
	s.Equal("Roadmap", got.Content)
	slides, err := s.slides.ListByPresentation(s.ctx, p.ID)
	require.NoError(t, err)
	s.Len(slides, 3)

	// повторный ID: слайды не вставляются, первая презентация не меняется
	dup := &domain.Presentation{ID: p.ID, UserID: "user-2", Tone: domain.ToneDefault, Verbosity: domain.VerbosityStandard}
	s.Error(s.presentations.CreateWithSlides(s.ctx, dup, slidesOf(5, "v2")))
	slides, err = s.slides.ListByPresentation(s.ctx, p.ID)
	require.NoError(t, err)
	s.Len(slides, 3)
	s.Equal("v1 0", slides[0].Content["title"])
}

func (s *PostgresSuite) TestReplaceSlidesIsAtomicForReaders() {
	t := s.T()
	p := s.newPresentation("user-1")
	require.NoError(t, s.slides.ReplaceForPresentation(s.ctx, p.ID, slidesOf(5, "v0")))

	var emptyReads, reads atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			slides, err := s.slides.ListByPresentation(s.ctx, p.ID)
			if err != nil {
				continue
			}
			reads.Add(1)
			if len(slides) == 0 {
				emptyReads.Add(1)
			}
		}
	}()

	for i := 1; i <= 20; i++ {
		require.NoError(t, s.slides.ReplaceForPresentation(s.ctx, p.ID, slidesOf(5+i%3, fmt.Sprintf("v%d", i))))
	}
	close(stop)
	wg.Wait()

	s.Positive(reads.Load())
	s.Zero(emptyReads.Load(), "readers must never observe a presentation without slides")

	slides, err := s.slides.ListByPresentation(s.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, slides, 5+20%3)
	for i, slide := range slides {
		s.Equal(i, slide.Index)
		s.Equal(fmt.Sprintf("v20 %d", i), slide.Content["title"])
	}
}

func (s *PostgresSuite) TestWebhookSubscriptions() {
	t := s.T()
	completed := &domain.WebhookSubscription{UserID: "user-1", URL: "https://example.com/hook", Event: domain.WebhookEventGenerationCompleted, Secret: "s", IsActive: true}
	failed := &domain.WebhookSubscription{UserID: "user-1", URL: "https://example.com/fail", Event: domain.WebhookEventGenerationFailed, IsActive: true}
	inactive := &domain.WebhookSubscription{UserID: "user-1", URL: "https://example.com/off", Event: domain.WebhookEventGenerationCompleted, IsActive: false}
	foreign := &domain.WebhookSubscription{UserID: "user-2", URL: "https://example.com/other", Event: domain.WebhookEventGenerationCompleted, IsActive: true}
	for _, sub := range []*domain.WebhookSubscription{completed, failed, inactive, foreign} {
		require.NoError(t, s.webhooks.Create(s.ctx, sub))
	}

	active, err := s.webhooks.ListActive(s.ctx, "user-1", domain.WebhookEventGenerationCompleted)
	require.NoError(t, err)
	require.Len(t, active, 1)
	s.Equal(completed.ID, active[0].ID)
	s.Equal("s", active[0].Secret)

	all, err := s.webhooks.ListByUser(s.ctx, "user-1")
	require.NoError(t, err)
	s.Len(all, 3)

	require.NoError(t, s.webhooks.Delete(s.ctx, completed.ID))
	_, err = s.webhooks.GetByID(s.ctx, completed.ID)
	s.ErrorIs(err, domain.ErrNotFound)
}

func TestPostgresSuite(t *testing.T) {
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

	suite.Run(t, new(PostgresSuite))
}
