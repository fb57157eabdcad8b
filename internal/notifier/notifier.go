package notifier

import (
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"auction-service/utils"
)

// Email templates understood by the notification consumer
const (
	TemplateVerificationEmail = "verification_email"
	TemplateAuctionWon        = "auction_won"
)

const notificationsQueue = "notifications"

// Notifier is the fire-and-forget notification sink. Delivery is best-effort;
// callers log failures instead of propagating them.
type Notifier interface {
	Notify(email, template string, data map[string]any) error
}

// Message is the wire format published to the notifications queue
type Message struct {
	Email    string         `json:"email"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

// AMQPNotifier publishes notification messages to a durable RabbitMQ queue
type AMQPNotifier struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPNotifier connects to RabbitMQ and declares the notifications queue
func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("notifier: failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notifier: failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(notificationsQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("notifier: failed to declare queue %s: %w", notificationsQueue, err)
	}
	return &AMQPNotifier{conn: conn, ch: ch}, nil
}

// Notify publishes a notification message for the given address
func (n *AMQPNotifier) Notify(email, template string, data map[string]any) error {
	body, err := json.Marshal(Message{Email: email, Template: template, Data: data})
	if err != nil {
		return fmt.Errorf("notifier: failed to marshal message: %w", err)
	}

	err = n.ch.Publish(
		"",
		notificationsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("notifier: failed to publish to %s: %w", notificationsQueue, err)
	}
	return nil
}

// Close releases the channel and connection
func (n *AMQPNotifier) Close() error {
	if err := n.ch.Close(); err != nil {
		return err
	}
	return n.conn.Close()
}

// LogNotifier writes notifications to the application log. Used when no
// broker is configured and in tests.
type LogNotifier struct{}

// Notify logs the notification instead of delivering it
func (LogNotifier) Notify(email, template string, data map[string]any) error {
	utils.Info("notification", map[string]any{
		"email":    email,
		"template": template,
		"data":     data,
	})
	return nil
}
