// Package webhook рассылает события генерации подписчикам пользователя
// и публикует их в шину событий.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deck-server/internal/domain"
)

var deliveries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deck_webhook_deliveries_total",
		Help: "Webhook delivery attempts by event and outcome.",
	},
	[]string{"event", "status"},
)

// SubscriptionLister отдаёт активные подписки пользователя на событие.
type SubscriptionLister interface {
	ListActive(ctx context.Context, userID string, event domain.WebhookEvent) ([]domain.WebhookSubscription, error)
}

// EventPublisher публикует событие во внешнюю шину.
type EventPublisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Message - тело запроса к подписчику.
type Message struct {
	Event     domain.WebhookEvent `json:"event"`
	Payload   any                 `json:"payload"`
	Timestamp time.Time           `json:"timestamp"`
	UserID    string              `json:"-"`
}

// Notifier доставляет события подписчикам. Ошибки доставки только логируются.
type Notifier struct {
	subs      SubscriptionLister
	publisher EventPublisher
	client    *http.Client
	timeout   time.Duration
	logger    *zap.Logger
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewNotifier создаёт рассыльщик. publisher может быть nil.
func NewNotifier(subs SubscriptionLister, publisher EventPublisher, timeout time.Duration, logger *zap.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		subs:      subs,
		publisher: publisher,
		client:    &http.Client{Timeout: timeout},
		timeout:   timeout,
		logger:    logger.Named("WebhookNotifier"),
		now:       time.Now,
	}
}

// Notify ставит событие в доставку и сразу возвращает управление.
func (n *Notifier) Notify(userID string, event domain.WebhookEvent, payload any) {
	msg := Message{Event: event, Payload: payload, Timestamp: n.now().UTC(), UserID: userID}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("Webhook delivery panicked", zap.Any("panic", r), zap.String("event", string(event)))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 2*n.timeout)
		defer cancel()
		n.Deliver(ctx, msg)
	}()
}

// Wait ждёт окончания всех начатых доставок.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Deliver синхронно отправляет событие всем подписчикам и в шину.
func (n *Notifier) Deliver(ctx context.Context, msg Message) {
	log := n.logger.With(zap.String("event", string(msg.Event)), zap.String("user_id", msg.UserID))

	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, msg); err != nil {
			log.Warn("Failed to publish event to bus", zap.Error(err))
		}
	}

	if n.subs == nil {
		return
	}
	subs, err := n.subs.ListActive(ctx, msg.UserID, msg.Event)
	if err != nil {
		log.Error("Failed to load webhook subscriptions", zap.Error(err))
		return
	}
	if len(subs) == 0 {
		return
	}

	body, err := json.Marshal(msg)
	if err != nil {
		log.Error("Failed to marshal webhook body", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, sub := range subs {
		g.Go(func() error {
			if err := n.post(ctx, sub, body); err != nil {
				deliveries.WithLabelValues(string(msg.Event), "failed").Inc()
				log.Warn("Webhook delivery failed", zap.String("subscription_id", sub.ID), zap.String("url", sub.URL), zap.Error(err))
				return nil
			}
			deliveries.WithLabelValues(string(msg.Event), "delivered").Inc()
			log.Debug("Webhook delivered", zap.String("subscription_id", sub.ID))
			return nil
		})
	}
	_ = g.Wait()
}

func (n *Notifier) post(ctx context.Context, sub domain.WebhookSubscription, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sub.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+sub.Secret)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("subscriber responded with status %d", resp.StatusCode)
	}
	return nil
}
