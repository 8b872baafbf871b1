package notifier

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/versewell/library-service/pkg/kafka"
)

type notifyFn func(ctx context.Context, event kafka.EventNotify) error

type Consumer struct {
	notifyHandler notifyFn
	log           *zap.Logger
}

func NewConsumer(notify notifyFn, log *zap.Logger) *Consumer {
	return &Consumer{
		notifyHandler: notify,
		log:           log.Named("consumer"),
	}
}

// Setup runs at the start of every session; rebalances create new sessions
// with the same handler, so it must stay re-entrant.
func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var event kafka.EventNotify
			if err := json.Unmarshal(message.Value, &event); err != nil {
				consumer.log.Error("unmarshal event", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			if err := consumer.notifyHandler(context.Background(), event); err != nil {
				consumer.log.Error("notifyHandler", zap.Int("borrowing_id", event.BorrowingID), zap.Error(err))
				continue
			}

			consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
