package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"studyreels/internal/model"
	"studyreels/internal/platform/rabbitmq"
)

type ChatMessageStore interface {
	CreateBatch(ctx context.Context, messages []model.ChatMessage) error
}

// MessagePersistWorker drains the chat persist queue into the database.
// Undecodable payloads are dropped; store failures are requeued once.
type MessagePersistWorker struct {
	conn      *amqp.Connection
	store     ChatMessageStore
	queueName string
	log       logrus.FieldLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMessagePersistWorker(conn *amqp.Connection, store ChatMessageStore, queueName string, log logrus.FieldLogger) *MessagePersistWorker {
	return &MessagePersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		log:       log.WithField("worker", "chat_persist"),
	}
}

func (w *MessagePersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *MessagePersistWorker) handle(ctx context.Context, d amqp.Delivery) {
	messages, err := decodeChatMessages(d.Body)
	if err != nil {
		w.log.WithError(err).Warn("drop undecodable chat message")
		_ = d.Nack(false, false)
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := w.store.CreateBatch(storeCtx, messages); err != nil {
		w.log.WithError(err).WithField("message_id", d.MessageId).Error("persist chat exchange failed")
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}

func decodeChatMessages(body []byte) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := json.Unmarshal(body, &messages); err != nil {
		return nil, fmt.Errorf("decode chat messages failed: %w", err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("chat exchange is empty")
	}
	for _, m := range messages {
		if m.UserID == "" || m.Content == "" {
			return nil, fmt.Errorf("chat message missing user or content")
		}
	}
	return messages, nil
}

func (w *MessagePersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
