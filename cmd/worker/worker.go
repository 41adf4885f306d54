package main

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/unclebandit/agency-portal-backend/internal/metrics"
	"github.com/unclebandit/agency-portal-backend/internal/queue"
	"github.com/unclebandit/agency-portal-backend/internal/repository"
	"github.com/unclebandit/agency-portal-backend/internal/service"
)

// subscribe attaches the notification writer to the review event topic.
func subscribe(q queue.Queue, conn *sql.DB, logger *zap.Logger, rec *metrics.Recorder) error {
	notifier := &service.NotificationService{
		Repo:    &repository.NotificationRepository{DB: conn},
		Logger:  logger.Named("notifier"),
		Metrics: rec,
	}
	return q.Subscribe(queue.TopicReviewEvents, notifier.HandleReviewEvent)
}
