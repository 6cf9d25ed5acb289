package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

type JobMessage struct {
	JobID string `json:"job_id"`
}

// QueueSpec describes one durable queue of the analysis topology.
type QueueSpec struct {
	Name string
	Args amqp.Table
}

// Topology returns the queue trio for one job queue: the main queue
// dead-letters to the DLQ, the retry queue dead-letters back to main. Every
// binary touching the queue must declare this exact set; the broker rejects a
// re-declare with different arguments.
func Topology(queue string) []QueueSpec {
	return []QueueSpec{
		{queue + ".dlq", nil},
		{queue + ".retry", amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue,
		}},
		{queue, amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue + ".dlq",
		}},
	}
}

// DeclareTopology declares the full queue trio on an open channel.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	for _, spec := range Topology(queue) {
		if _, err := ch.QueueDeclare(spec.Name, true, false, false, false, spec.Args); err != nil {
			return err
		}
	}
	return nil
}

// NewPublisher connects and declares the analysis queue topology.
func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// PublishJob enqueues one analysis job id as a persistent message.
func (p *Publisher) PublishJob(ctx context.Context, jobID string) error {
	body, err := json.Marshal(JobMessage{JobID: jobID})
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}
