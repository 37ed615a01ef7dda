package queue

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

const retryHeader = "x-retry-count"

type deliveryJob struct {
	NotificationID string `json:"notification_id"`
}

// AMQPQueue publishes and consumes notification IDs through RabbitMQ.
type AMQPQueue struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	maxRetries int
}

func NewAMQPQueue(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open queue channel: %w", err)
	}

	return &AMQPQueue{conn: conn, ch: ch, maxRetries: defaultMaxRetries}, nil
}

func (q *AMQPQueue) declare(topic string) error {
	_, err := q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	return err
}

// Publish expects the payload to be a notification ID.
func (q *AMQPQueue) Publish(topic string, payload any) error {
	id, ok := payload.(string)
	if !ok {
		return fmt.Errorf("unsupported payload type %T", payload)
	}
	return q.publish(topic, id, 0)
}

func (q *AMQPQueue) publish(topic, id string, retries int32) error {
	if err := q.declare(topic); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(deliveryJob{NotificationID: id})
	if err != nil {
		return err
	}

	return q.ch.Publish(
		"",
		topic,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{retryHeader: retries},
			Body:         body,
		},
	)
}

// Subscribe consumes the topic in the background. A failed job is
// republished with its retry count bumped until maxRetries is reached.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	if err := q.declare(topic); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	msgs, err := q.ch.Consume(
		topic,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			q.handle(topic, d, handler)
		}
		log.Println("⚠️ Consumer channel closed for", topic)
	}()
	return nil
}

func (q *AMQPQueue) handle(topic string, d amqp.Delivery, handler func(payload any) error) {
	var job deliveryJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Println("Invalid job:", err)
		d.Ack(false)
		return
	}

	if err := handler(job.NotificationID); err != nil {
		retries := retryCount(d.Headers)
		if int(retries) < q.maxRetries {
			if perr := q.publish(topic, job.NotificationID, retries+1); perr != nil {
				log.Println("⚠️ Failed to requeue job:", perr)
				d.Nack(false, true)
				return
			}
		} else {
			log.Printf("Job permanently failed after %d attempts: %s\n", q.maxRetries, job.NotificationID)
		}
	}
	d.Ack(false)
}

func retryCount(h amqp.Table) int32 {
	switch v := h[retryHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	}
	return 0
}

func (q *AMQPQueue) Close() error {
	if q.ch != nil {
		q.ch.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

var (
	_ Queue = (*AMQPQueue)(nil)
	_ Queue = (*InMemoryQueue)(nil)
)
