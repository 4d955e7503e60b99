package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type amqpNotifier struct {
	conn     *amqp091.Connection
	exchange string
	logger   *zap.Logger
}

// NewAMQP connects to the broker and declares the topic exchange used for
// outbound notifications.
func NewAMQP(url, exchange string, logger *zap.Logger) (Notifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(
		exchange, "topic", true, false, false, false, nil,
	); err != nil {
		conn.Close()
		return nil, err
	}

	return &amqpNotifier{
		conn:     conn,
		exchange: exchange,
		logger:   logger,
	}, nil
}

func (n *amqpNotifier) Enqueue(ctx context.Context, msg Message) error {
	ch, err := n.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = time.Now()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := "notification." + string(msg.Kind)
	err = ch.PublishWithContext(
		ctx, n.exchange, key, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.EnqueuedAt,
			Body:         body,
		},
	)
	if err == nil {
		n.logger.Info("notification enqueued",
			zap.String("key", key),
			zap.String("item_id", msg.ItemID),
			zap.String("target_agent_id", msg.TargetAgentID))
	}
	return err
}

func (n *amqpNotifier) Close() error {
	return n.conn.Close()
}
