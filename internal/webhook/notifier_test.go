package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deck-server/internal/domain"
	"deck-server/internal/webhook"
)

type stubLister struct {
	subs    []domain.WebhookSubscription
	err     error
	block   chan struct{}
	mu      sync.Mutex
	userIDs []string
}

func (s *stubLister) ListActive(ctx context.Context, userID string, event domain.WebhookEvent) ([]domain.WebhookSubscription, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.userIDs = append(s.userIDs, userID)
	s.mu.Unlock()

	var out []domain.WebhookSubscription
	for _, sub := range s.subs {
		if sub.Event == event {
			out = append(out, sub)
		}
	}
	return out, s.err
}

type stubPublisher struct {
	mu   sync.Mutex
	msgs []webhook.Message
	err  error
}

func (p *stubPublisher) Publish(ctx context.Context, msg webhook.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

type received struct {
	auth string
	body map[string]any
}

func recordingServer(t *testing.T, status int) (*httptest.Server, <-chan received) {
	t.Helper()
	ch := make(chan received, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(data, &body)
		ch <- received{auth: r.Header.Get("Authorization"), body: body}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func TestNotifier_DeliversToEverySubscriber(t *testing.T) {
	okSrv, okCh := recordingServer(t, http.StatusOK)
	failSrv, failCh := recordingServer(t, http.StatusInternalServerError)

	lister := &stubLister{subs: []domain.WebhookSubscription{
		{ID: "s1", URL: okSrv.URL, Event: domain.WebhookEventGenerationCompleted, Secret: "top-secret", IsActive: true},
		{ID: "s2", URL: failSrv.URL, Event: domain.WebhookEventGenerationCompleted, IsActive: true},
		{ID: "s3", URL: "http://127.0.0.1:1/unreachable", Event: domain.WebhookEventGenerationCompleted, IsActive: true},
		{ID: "s4", URL: okSrv.URL, Event: domain.WebhookEventGenerationFailed, IsActive: true},
	}}
	publisher := &stubPublisher{}
	n := webhook.NewNotifier(lister, publisher, time.Second, zap.NewNop())

	payload := domain.PresentationPathAndEditPath{PresentationID: "p1", Path: "/static/exports/p1.pdf", EditPath: "/presentation?id=p1"}
	n.Notify("user-1", domain.WebhookEventGenerationCompleted, payload)
	n.Wait()

	require.Len(t, okCh, 1, "only the completed subscription on this server is called")
	got := <-okCh
	assert.Equal(t, "Bearer top-secret", got.auth)
	assert.Equal(t, "presentation.generation.completed", got.body["event"])
	assert.NotEmpty(t, got.body["timestamp"])
	assert.NotContains(t, got.body, "user_id")
	p, ok := got.body["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", p["presentation_id"])

	require.Len(t, failCh, 1)
	assert.Empty(t, (<-failCh).auth)

	assert.Equal(t, []string{"user-1"}, lister.userIDs)
	require.Len(t, publisher.msgs, 1)
	assert.Equal(t, "user-1", publisher.msgs[0].UserID)
}

func TestNotifier_NotifyDoesNotBlock(t *testing.T) {
	lister := &stubLister{block: make(chan struct{})}
	n := webhook.NewNotifier(lister, nil, time.Second, zap.NewNop())

	done := make(chan struct{})
	go func() {
		n.Notify("u", domain.WebhookEventGenerationFailed, map[string]any{"detail": "boom"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on delivery")
	}
	close(lister.block)
	n.Wait()
}

func TestNotifier_SubscriptionAndBusErrorsAreSwallowed(t *testing.T) {
	lister := &stubLister{err: errors.New("db down")}
	publisher := &stubPublisher{err: errors.New("broker down")}
	n := webhook.NewNotifier(lister, publisher, time.Second, zap.NewNop())

	assert.NotPanics(t, func() {
		n.Deliver(context.Background(), webhook.Message{Event: domain.WebhookEventGenerationFailed, UserID: "u"})
	})
	assert.Len(t, publisher.msgs, 1)
}
