package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"loja_pix/internal/usecase/interfaces"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName     = "payments"
	EntitlementQueue = "payment_entitlements"
	PrefetchCount    = 1
)

// RabbitMQClient publishes payment lifecycle events on a durable direct
// exchange, routed by event type, and consumes approvals for the
// entitlement worker.
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

var _ interfaces.IPaymentEventPublisher = (*RabbitMQClient)(nil)

func NewRabbitMQClient(amqpURL string) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(channel); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("[messaging][rabbitmq] connected exchange=%s", ExchangeName)
	return &RabbitMQClient{conn: conn, channel: channel}, nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		EntitlementQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(EntitlementQueue, interfaces.EventPaymentApproved, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

func (c *RabbitMQClient) Publish(ctx context.Context, evt interfaces.PaymentEvent) error {
	msg, err := encodeEvent(evt)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.PublishWithContext(ctx,
		ExchangeName,
		evt.Type,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	log.Printf("[messaging][rabbitmq] published type=%s payment_id=%s", evt.Type, evt.PaymentID)
	return nil
}

// ConsumeApprovals blocks delivering payment.approved events to handler until
// ctx is done or the channel closes. A handler error requeues the message.
func (c *RabbitMQClient) ConsumeApprovals(ctx context.Context, handler func(context.Context, interfaces.PaymentEvent) error) error {
	if err := c.channel.Qos(PrefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		EntitlementQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}
	log.Printf("[messaging][rabbitmq] consuming queue=%s", EntitlementQueue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			handleDelivery(ctx, d, handler)
		}
	}
}

func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func encodeEvent(evt interfaces.PaymentEvent) (amqp.Publishing, error) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         evt.Type,
		Timestamp:    evt.OccurredAt,
		Body:         body,
	}, nil
}

func handleDelivery(ctx context.Context, d amqp.Delivery, handler func(context.Context, interfaces.PaymentEvent) error) {
	var evt interfaces.PaymentEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		log.Printf("[messaging][rabbitmq] dropping malformed message id=%s err=%v", d.MessageId, err)
		_ = d.Nack(false, false)
		return
	}
	if err := handler(ctx, evt); err != nil {
		log.Printf("[messaging][rabbitmq] handler failed payment_id=%s err=%v, requeueing", evt.PaymentID, err)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, evt interfaces.PaymentEvent) error {
	log.Printf("[messaging][noop] event type=%s payment_id=%s", evt.Type, evt.PaymentID)
	return nil
}
