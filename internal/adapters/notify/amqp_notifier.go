package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys on the notification exchange.
const (
	RoutingResultGenerated = "result.generated"
	RoutingResultPublished = "result.published"
)

// Event is the JSON body of every notification message.
type Event struct {
	Type        string    `json:"type"`
	RequestID   string    `json:"requestID"`
	ResultID    string    `json:"resultID,omitempty"`
	PublishedID string    `json:"publishedID,omitempty"`
	UserID      string    `json:"userID,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// publisher is the subset of *amqp.Channel the notifier uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes events to a topic exchange.
type AMQPNotifier struct {
	conn     *amqp.Connection
	channel  publisher
	exchange string
	clock    func() time.Time
}

// NewAMQPNotifier connects to the broker and declares the exchange.
func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	n := newAMQPNotifier(channel, exchange)
	n.conn = conn
	return n, nil
}

func newAMQPNotifier(ch publisher, exchange string) *AMQPNotifier {
	return &AMQPNotifier{channel: ch, exchange: exchange, clock: time.Now}
}

var _ portssvc.Notifier = (*AMQPNotifier)(nil)

// Close closes the channel and connection.
func (n *AMQPNotifier) Close() error {
	if c, ok := n.channel.(*amqp.Channel); ok && c != nil {
		c.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

func (n *AMQPNotifier) ResultGenerated(ctx context.Context, result domain.GenerationResult) error {
	return n.publish(ctx, RoutingResultGenerated, Event{
		Type:      RoutingResultGenerated,
		RequestID: result.RequestID,
		ResultID:  result.ResultID,
	})
}

func (n *AMQPNotifier) ResultPublished(ctx context.Context, userID string, published domain.PublishedResult) error {
	return n.publish(ctx, RoutingResultPublished, Event{
		Type:        RoutingResultPublished,
		RequestID:   published.RequestID,
		PublishedID: published.PublishedID,
		UserID:      userID,
	})
}

func (n *AMQPNotifier) publish(ctx context.Context, key string, event Event) error {
	event.OccurredAt = n.clock().UTC()
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = n.channel.PublishWithContext(ctx,
		n.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}

	middleware.GetLoggerFromCtx(ctx).Debug("Published notification",
		slog.String("exchange", n.exchange),
		slog.String("routing_key", key),
		slog.String("request_id", event.RequestID))
	return nil
}
