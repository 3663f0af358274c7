package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ReleasePayload carries the reservation batches a sweep should release.
type ReleasePayload struct {
	BatchIDs []string `json:"batch_ids"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

// ScheduleRelease publishes the batch ids to the delay queue with the delay
// as the message TTL; expiry dead-letters it to the sweeper.
func (p *RabbitMQProducer) ScheduleRelease(ctx context.Context, batchIDs []string, delay time.Duration) error {
	body, err := json.Marshal(ReleasePayload{BatchIDs: batchIDs})
	if err != nil {
		return fmt.Errorf("failed to encode release payload: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		DelayKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Expiration:   strconv.FormatInt(delay.Milliseconds(), 10),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish release message: %v", err)
	}

	return nil
}
