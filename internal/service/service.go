package service

import (
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/versewell/library-service/internal/repository"
	"github.com/versewell/library-service/pkg/kafka"
)

// Policy holds the configurable lending rules. FinePerDay is the single
// fine rate for both stored fines and quoted fines.
type Policy struct {
	LoanDays      int     `envconfig:"LOAN_DAYS" default:"14"`
	ExtensionDays int     `envconfig:"EXTENSION_DAYS" default:"14"`
	MaxRenewals   int     `envconfig:"MAX_RENEWALS" default:"2"`
	FinePerDay    float64 `envconfig:"FINE_PER_DAY" default:"0.50"`
}

type Service struct {
	log      *zap.Logger
	repo     repository.Repository
	enqueuer Enqueuer
	policy   Policy
}

func NewService(repo repository.Repository, producer sarama.SyncProducer, policy Policy, log *zap.Logger) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		enqueuer: NewEnqueuer(producer),
		policy:   policy,
	}
}

// Enqueuer publishes lifecycle events for the notifier. Delivery problems are
// logged and swallowed: notifications never affect borrowing state.
type Enqueuer interface {
	Enqueue(topic string, v any) error
}

func NewEnqueuer(producer sarama.SyncProducer) Enqueuer {
	return &enqueuerImpl{
		producer: producer,
	}
}

type enqueuerImpl struct {
	producer sarama.SyncProducer
}

func (q *enqueuerImpl) Enqueue(topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.StringEncoder(data)}
	if _, _, err = q.producer.SendMessage(msg); err != nil {
		return err
	}
	return nil
}

func (s *Service) notify(t kafka.NotificationType, borrowingID int) {
	if err := s.enqueuer.Enqueue(kafka.NotifyTopic, kafka.EventNotify{
		Type:        t,
		BorrowingID: borrowingID,
	}); err != nil {
		s.log.Warn("enqueue notification",
			zap.String("type", string(t)), zap.Int("borrowing_id", borrowingID), zap.Error(err))
	}
}
