package scorenotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrDeliveriesClosed = errors.New("amqp delivery channel closed")

// AmqpChannel abstracts the subset of *amqp.Channel the listener uses.
type AmqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Consume(queue, consumer string,
		autoAck, exclusive, noLocal, noWait bool,
		args amqp.Table) (<-chan amqp.Delivery, error)
}

type AmqpListener struct {
	ch     AmqpChannel
	queue  string
	inv    Invalidator
	logger *slog.Logger
}

func NewAmqpListener(ch AmqpChannel, queue string, inv Invalidator, logger *slog.Logger) *AmqpListener {
	return &AmqpListener{
		ch:     ch,
		queue:  queue,
		inv:    inv,
		logger: logger.With("listener", "amqp", "queue", queue),
	}
}

// DialAmqp opens a connection and a channel on it. Closing the connection
// closes the channel too.
func DialAmqp(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return conn, ch, nil
}

// Start declares the durable queue and consumes it with auto-ack until ctx is
// cancelled or the broker closes the delivery channel.
func (l *AmqpListener) Start(ctx context.Context) error {
	_, err := l.ch.QueueDeclare(l.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", l.queue, err)
	}
	msgs, err := l.ch.Consume(l.queue, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", l.queue, err)
	}

	l.logger.Info("listening for scored participations")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			handleBody(ctx, l.inv, l.logger, msg.Body)
		}
	}
}
