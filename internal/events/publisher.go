package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-portal/internal/retry"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const (
	ApplicationCreated       = "application.created"
	ApplicationStatusUpdated = "application.status_updated"
)

// ApplicationEvent is published when a student applies or a recruiter
// changes an application's status.
type ApplicationEvent struct {
	Type          string    `json:"type"`
	ApplicationID uuid.UUID `json:"application_id"`
	JobID         uuid.UUID `json:"job_id"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e ApplicationEvent) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, ApplicationEvent) error { return nil }

// AMQPPublisher sends events to a durable topic exchange, routed by type.
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	logrus.WithField("exchange", exchange).Info("RabbitMQ publisher ready")
	return &AMQPPublisher{conn: conn, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e ApplicationEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = retry.Do(ctx, 3, 200*time.Millisecond, func() (struct{}, error) {
		return struct{}{}, p.publish(e.Type, body, e.OccurredAt)
	})
	return err
}

func (p *AMQPPublisher) publish(routingKey string, body []byte, ts time.Time) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.Publish(
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ts,
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() error { return p.conn.Close() }
