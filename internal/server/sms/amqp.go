package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender 把短信任务投递到持久化队列，由外部短信网关消费
type AMQPSender struct {
	conn  *amqp.Connection
	ch    publisher
	queue string
}

// Job 队列消息体
type Job struct {
	RequestID string    `json:"request_id"`
	Phone     string    `json:"phone"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func DialAMQP(url, queue string) (*AMQPSender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &AMQPSender{conn: conn, ch: ch, queue: queue}, nil
}

func (s *AMQPSender) Send(ctx context.Context, phone, text string) (string, error) {
	job := Job{RequestID: uuid.NewString(), Phone: phone, Text: text, CreatedAt: time.Now().UTC()}
	body, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	err = s.ch.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.RequestID,
		Timestamp:    job.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return "", fmt.Errorf("publish sms job: %w", err)
	}
	return job.RequestID, nil
}

func (s *AMQPSender) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
