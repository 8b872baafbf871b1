package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

const (
	NotifyTopic         = "library.notifications"
	NotifyConsumerGroup = "library-notifier"
)

// NotificationType mirrors the notification_logs.notification_type column.
type NotificationType string

const (
	NotifyDueSoon         NotificationType = "due_soon"
	NotifyOverdue         NotificationType = "overdue"
	NotifyRenewalApproved NotificationType = "renewal_approved"
	NotifyReminder        NotificationType = "reminder"
)

// EventNotify is the message published for every borrowing lifecycle event
// the notifier consumes.
type EventNotify struct {
	Type        NotificationType `json:"type"`
	BorrowingID int              `json:"borrowingId"`
}

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume runs the consumer group loop until ctx is canceled.
func Consume(ctx context.Context, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, topic string) error {
	for {
		if err := group.Consume(ctx, []string{topic}, handler); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
