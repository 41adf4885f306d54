package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DSN(), logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	rec := metrics.NewRecorder()

	// With a broker, cmd/worker turns review events into notifications.
	// Without one they are handled in process.
	var q queue.Queue
	var inMemory *queue.InMemoryQueue
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.DialAMQP(cfg.AMQPURL, logger.Named("amqp"))
		if err != nil {
			return err
		}
		defer amqpQueue.Close()
		q = amqpQueue
		logger.Info("publishing review events to amqp")
	} else {
		inMemory = queue.NewInMemoryQueue(logger.Named("queue"))
		q = inMemory
	}

	a := newApp(cfg, conn, q, logger, rec)
	if inMemory != nil {
		if err := inMemory.Subscribe(queue.TopicReviewEvents, a.notifier.HandleReviewEvent); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if inMemory != nil {
		inMemory.Wait()
	}
	return nil
}
