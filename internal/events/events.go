// Package events announces parsed résumés on a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonathan/resume-reader/internal/masking"
	"github.com/jonathan/resume-reader/internal/types"
	"github.com/streadway/amqp"
)

const (
	// Exchange is the topic exchange parse events are published to.
	Exchange = "resume_events"
	// RoutingKeyParsed is used for every successfully stored résumé.
	RoutingKeyParsed = "resume.parsed"
)

// ResumeEvent is the wire payload. Contact details are masked before publishing.
type ResumeEvent struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	Email       string    `json:"email"`
	SkillsCount int       `json:"skills_count"`
	ParsedAt    time.Time `json:"parsed_at"`
}

// NewResumeEvent builds the event for a stored record.
func NewResumeEvent(r *types.ResumeRecord, at time.Time) ResumeEvent {
	return ResumeEvent{
		ID:          r.ID,
		FileName:    r.FileName,
		Email:       masking.MaskEmail(r.Email),
		SkillsCount: len(r.Skills),
		ParsedAt:    at.UTC(),
	}
}

// Publisher delivers resume events.
type Publisher interface {
	Publish(ctx context.Context, event ResumeEvent) error
	Close() error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, ResumeEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes on a single long-lived channel.
type AMQPPublisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     channel
	logger *slog.Logger
}

// DialAMQP connects to url and declares the durable topic exchange.
func DialAMQP(url string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	p, err := newAMQPPublisher(ch, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch channel, logger *slog.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	err := ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("error declaring exchange %s: %w", Exchange, err)
	}
	return &AMQPPublisher{ch: ch, logger: logger}, nil
}

// Publish sends event as persistent JSON.
func (p *AMQPPublisher) Publish(ctx context.Context, event ResumeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshalling event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		Exchange,
		RoutingKeyParsed,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.ParsedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("error publishing event: %w", err)
	}
	p.logger.Debug("published resume event", "id", event.ID, "routing_key", RoutingKeyParsed)
	return nil
}

// Close closes the channel and, when owned, the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
