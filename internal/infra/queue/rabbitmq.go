package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.marketplace"

	// ReleaseQueue receives batch-release messages once their delay elapses.
	ReleaseQueue = "q.lead-release"
	// DelayQueue parks release messages with a per-message TTL; expired
	// messages dead-letter into ReleaseQueue.
	DelayQueue = "q.lead-release.delay"

	ReleaseKey = "k.lead-release"
	DelayKey   = "k.lead-release.delay"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

// setupTopology declares the delayed-release plumbing: messages published to
// the delay queue sit there until their TTL expires, then dead-letter into
// the release queue the sweeper consumes. There is no consumer on the delay
// queue on purpose.
func setupTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(ReleaseQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	err = ch.QueueBind(ReleaseQueue, ReleaseKey, ExchangeName, false, nil)
	if err != nil {
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    ExchangeName,
		"x-dead-letter-routing-key": ReleaseKey,
	}

	_, err = ch.QueueDeclare(DelayQueue, true, false, false, false, args)
	if err != nil {
		return err
	}

	err = ch.QueueBind(DelayQueue, DelayKey, ExchangeName, false, nil)
	if err != nil {
		return err
	}

	return nil
}

func (r *RabbitMQ) Close() {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		r.Conn.Close()
	}
}
