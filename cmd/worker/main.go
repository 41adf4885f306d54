package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/unclebandit/agency-portal-backend/internal/config"
	"github.com/unclebandit/agency-portal-backend/internal/db"
	"github.com/unclebandit/agency-portal-backend/internal/logging"
	"github.com/unclebandit/agency-portal-backend/internal/metrics"
	"github.com/unclebandit/agency-portal-backend/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the worker")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DSN(), logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	q, err := queue.DialAMQP(cfg.AMQPURL, logger.Named("amqp"))
	if err != nil {
		return err
	}
	defer q.Close()

	if err := subscribe(q, conn, logger, metrics.NewRecorder()); err != nil {
		return err
	}

	logger.Info("worker running, waiting for review events", zap.String("topic", queue.TopicReviewEvents))
	<-ctx.Done()
	logger.Info("shutting down worker")
	return nil
}
