package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/versewell/library-service/config"
	"github.com/versewell/library-service/internal/catalog"
	"github.com/versewell/library-service/internal/handler"
	"github.com/versewell/library-service/internal/notifier"
	"github.com/versewell/library-service/internal/repository"
	"github.com/versewell/library-service/internal/server"
	"github.com/versewell/library-service/internal/service"
	"github.com/versewell/library-service/migrations"
	"github.com/versewell/library-service/pkg/kafka"
	"github.com/versewell/library-service/pkg/logger"
	"github.com/versewell/library-service/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %w", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo init %w", err)
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("kafka.NewProducer %w", err)
	}
	svc := service.NewService(repo, producer, cfg.Policy, log)
	catalogClient := catalog.NewClient(cfg.Catalog, log)
	h := handler.New(svc, svc, svc, svc, catalogClient, log)

	consumeCtx, stopConsume := context.WithCancel(context.Background())
	defer stopConsume()
	consumerGroup, err := kafka.NewConsumer(cfg.Kafka, kafka.NotifyConsumerGroup)
	if err != nil {
		return fmt.Errorf("kafka.NewConsumer %w", err)
	}
	ntf := notifier.New(repo, cfg.Policy.FinePerDay, log)
	go func() {
		if err := kafka.Consume(consumeCtx, consumerGroup, notifier.NewConsumer(ntf.Handle, log), kafka.NotifyTopic); err != nil && consumeCtx.Err() == nil {
			log.Error("kafka consume", zap.Error(err))
		}
	}()

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-consumeCtx.Done():
				return
			case <-ticker.C:
				if err := svc.SweepDueSoon(consumeCtx); err != nil {
					log.Error("due soon sweep", zap.Error(err))
				}
			}
		}
	}()

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	stopConsume()
	if err = consumerGroup.Close(); err != nil {
		log.Error("consumerGroup.Close", zap.Error(err))
	}
	if err = producer.Close(); err != nil {
		log.Error("producer.Close", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
