package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kovaleads/marketplace/internal/infra/http/middleware"
)

// BatchReleaser is the sweep the worker drives for each release message.
type BatchReleaser interface {
	Execute(ctx context.Context, batchIDs []string) (int64, error)
}

type Worker struct {
	Channel *amqp.Channel
	Sweeper BatchReleaser
}

func NewWorker(ch *amqp.Channel, sweeper BatchReleaser) *Worker {
	return &Worker{
		Channel: ch,
		Sweeper: sweeper,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual is safer)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload ReleasePayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] invalid release payload: %s", err)
				// Malformed message. Reject without requeue so it does not
				// clog the queue.
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] releasing %d reservation batches", len(payload.BatchIDs))

			released, err := w.Sweeper.Execute(context.Background(), payload.BatchIDs)
			if err != nil {
				log.Printf("❌ [WORKER] release failed: %s", err)
				// The periodic expiry worker backstops a lost message, so a
				// failed sweep is retried once and then dropped.
				if d.Redelivered {
					d.Nack(false, false)
				} else {
					d.Nack(false, true)
				}
			} else {
				middleware.RecordSweep(released)
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker waiting on queue '%s'", queueName)
	<-forever
}
