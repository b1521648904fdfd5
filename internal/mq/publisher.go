package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Critiquely/internal/domain"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует тело сообщения в указанный exchange с routing key.
// Сообщение помечается persistent и переживает рестарт RabbitMQ.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, body []byte) error {
	messageID := uuid.New().String()

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    messageID,
				Timestamp:    time.Now(),
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", messageID,
		)

		return nil
	})
}

// PublishReviewRequest публикует задачу на review в очередь процессора.
// Тело сообщения — сериализованный ReviewTask; задача валидируется
// перед отправкой, чтобы заведомо невалидное сообщение не попало в
// очередь и не ушло сразу в DLQ.
func (p *Publisher) PublishReviewRequest(ctx context.Context, task *domain.ReviewTask) error {
	if err := task.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	return p.Publish(ctx, ExchangeReviews, RoutingKeyReview, body)
}
