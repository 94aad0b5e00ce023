package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"elitestay/internal/domain"
)

const (
	Exchange              = "elitestay.bookings"
	RoutingKeyConfirmed   = "booking.confirmed"
	publishTimeout        = 10 * time.Second
	eventBookingConfirmed = "booking.confirmed"
)

// channel is the slice of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type bookingEvent struct {
	Event      string          `json:"event"`
	BookingID  string          `json:"bookingId"`
	UserID     string          `json:"userId"`
	Property   domain.Property `json:"property"`
	CreatedAt  time.Time       `json:"createdAt"`
	PayOnVisit bool            `json:"payOnVisit"`
}

// Publisher sends booking events to a durable topic exchange.
type Publisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
}

// Dial connects and declares the exchange.
func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", Exchange, err)
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) PublishBookingConfirmed(ctx context.Context, b domain.BookingRecord) error {
	body, err := json.Marshal(bookingEvent{
		Event:      eventBookingConfirmed,
		BookingID:  b.ID,
		UserID:     b.UserID,
		Property:   b.Property,
		CreatedAt:  b.CreatedAt,
		PayOnVisit: true,
	})
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    b.ID,
		Timestamp:    time.Now(),
		Body:         body,
	}

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return fmt.Errorf("rabbitmq: publisher closed")
	}
	if err := p.ch.PublishWithContext(pctx, Exchange, RoutingKeyConfirmed, false, false, msg); err != nil {
		return fmt.Errorf("publish booking %s: %w", b.ID, err)
	}
	log.Debug().Str("booking_id", b.ID).Str("routing_key", RoutingKeyConfirmed).Msg("booking event published")
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	if p.ch != nil {
		firstErr = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conn = nil
	}
	return firstErr
}
