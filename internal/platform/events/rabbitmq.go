package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the topic exchange all marketplace events go through.
	ExchangeName = "martminds.events"
	exchangeType = "topic"
)

type rabbitPublisher struct {
	ch *amqp.Channel
}

// SetupConn dials RabbitMQ and declares the events exchange. It retries a
// few times to survive broker startup ordering.
func SetupConn(url string) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Printf("failed to connect to RabbitMQ (attempt %d): %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName, // name
		exchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return nil, nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return conn, ch, nil
}

// NewRabbitPublisher creates a Publisher backed by an open AMQP channel.
func NewRabbitPublisher(ch *amqp.Channel) Publisher {
	return &rabbitPublisher{ch: ch}
}

func (p *rabbitPublisher) PublishOrderEvent(ctx context.Context, ev OrderEvent) error {
	// Routing key: order.<status> (e.g. order.out_for_delivery)
	return p.publish(ctx, "order."+strings.ToLower(ev.Status), ev)
}

func (p *rabbitPublisher) PublishPaymentEvent(ctx context.Context, ev PaymentEvent) error {
	// Routing key: payment.<status> (e.g. payment.success)
	return p.publish(ctx, "payment."+strings.ToLower(ev.Status), ev)
}

func (p *rabbitPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		ExchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
