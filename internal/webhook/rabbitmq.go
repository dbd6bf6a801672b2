package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// busEvent - сообщение в шине. В отличие от вебхука содержит владельца.
type busEvent struct {
	Message
	UserID string `json:"user_id"`
}

// RabbitMQPublisher публикует события генерации в fanout exchange.
type RabbitMQPublisher struct {
	mu       sync.Mutex
	ch       *amqp091.Channel
	exchange string
	logger   *zap.Logger
}

var _ EventPublisher = (*RabbitMQPublisher)(nil)

// NewRabbitMQPublisher открывает канал и объявляет durable fanout exchange.
func NewRabbitMQPublisher(conn *amqp091.Connection, exchange string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}

	logger = logger.Named("EventPublisher").With(zap.String("exchange", exchange))
	logger.Info("Presentation events exchange declared")

	return &RabbitMQPublisher{ch: ch, exchange: exchange, logger: logger}, nil
}

// Publish отправляет событие в exchange.
func (p *RabbitMQPublisher) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(busEvent{Message: msg, UserID: msg.UserID})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// amqp091.Channel не рассчитан на конкурентную публикацию
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		"",         // routing key (не используется для fanout)
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    msg.Timestamp,
			Type:         string(msg.Event),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published", zap.String("event", string(msg.Event)))
	return nil
}

// Close закрывает канал.
func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
