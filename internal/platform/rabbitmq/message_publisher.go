package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"studyreels/internal/model"
)

type queueDeclarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

// publishChannel is the part of *amqp.Channel the publisher uses.
type publishChannel interface {
	queueDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// ChatMessagePublisher queues chat exchanges for the persist worker. Every
// publish is one AMQP message holding a JSON array, so a user turn and its
// reply are persisted together or not at all. The queue is declared on the
// first successful publish; a failed declaration is retried on the next call.
type ChatMessagePublisher struct {
	openChannel func() (publishChannel, error)
	queueName   string

	mu       sync.Mutex
	declared bool
}

func NewChatMessagePublisher(conn *amqp.Connection, queueName string) *ChatMessagePublisher {
	return newChatMessagePublisher(func() (publishChannel, error) {
		return conn.Channel()
	}, queueName)
}

func newChatMessagePublisher(open func() (publishChannel, error), queueName string) *ChatMessagePublisher {
	return &ChatMessagePublisher{openChannel: open, queueName: queueName}
}

func (p *ChatMessagePublisher) Publish(ctx context.Context, messages []model.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal message payload failed: %w", err)
	}

	ch, err := p.openChannel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := p.ensureQueue(ch); err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    messages[0].ID,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish message failed: %w", err)
	}
	return nil
}

func (p *ChatMessagePublisher) ensureQueue(ch queueDeclarer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.declared {
		return nil
	}
	if _, err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}
	p.declared = true
	return nil
}

// DeclareQueue declares the durable queue shared by publisher and worker.
func DeclareQueue(ch queueDeclarer, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue failed: %w", err)
	}
	return q, nil
}
