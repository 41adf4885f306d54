package main

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/unclebandit/agency-portal-backend/internal/config"
	"github.com/unclebandit/agency-portal-backend/internal/controller"
	"github.com/unclebandit/agency-portal-backend/internal/handler"
	"github.com/unclebandit/agency-portal-backend/internal/metrics"
	"github.com/unclebandit/agency-portal-backend/internal/middleware"
	"github.com/unclebandit/agency-portal-backend/internal/model"
	"github.com/unclebandit/agency-portal-backend/internal/queue"
	"github.com/unclebandit/agency-portal-backend/internal/repository"
	"github.com/unclebandit/agency-portal-backend/internal/service"
)

// app holds every HTTP-facing component of the server.
type app struct {
	db      *sql.DB
	logger  *zap.Logger
	metrics *metrics.Recorder
	limiter *middleware.RateLimiter
	secret  []byte
	controller.Responder

	blogPosts     *controller.ContentController[*model.BlogPost]
	socialPosts   *controller.ContentController[*model.SocialPost]
	campaigns     *controller.ContentController[*model.Campaign]
	notifications *handler.NotificationHandler
	dashboard     *handler.DashboardHandler

	notifier *service.NotificationService
}

func newApp(cfg *config.Config, conn *sql.DB, q queue.Queue, logger *zap.Logger, rec *metrics.Recorder) *app {
	blogRepo := &repository.BlogPostRepository{DB: conn}
	socialRepo := &repository.SocialPostRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	clientRepo := &repository.ClientRepository{DB: conn}
	notificationRepo := &repository.NotificationRepository{DB: conn}

	responder := controller.Responder{Logger: logger, Debug: !cfg.IsProduction()}

	return &app{
		db:      conn,
		logger:  logger,
		metrics: rec,
		limiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		secret:  []byte(cfg.JWTSecret),

		Responder: responder,

		blogPosts: &controller.ContentController[*model.BlogPost]{
			Service: &service.ReviewService[*model.BlogPost]{
				Repo: blogRepo, Clients: clientRepo, Slugs: blogRepo,
				Queue: q, Logger: logger.Named("blog_posts"), Metrics: rec,
			},
			Binder:    controller.BlogPostBinder{},
			Responder: responder,
		},
		socialPosts: &controller.ContentController[*model.SocialPost]{
			Service: &service.ReviewService[*model.SocialPost]{
				Repo: socialRepo, Clients: clientRepo,
				Queue: q, Logger: logger.Named("social_posts"), Metrics: rec,
			},
			Binder:    controller.SocialPostBinder{},
			Responder: responder,
		},
		campaigns: &controller.ContentController[*model.Campaign]{
			Service: &service.ReviewService[*model.Campaign]{
				Repo: campaignRepo, Clients: clientRepo,
				Queue: q, Logger: logger.Named("campaigns"), Metrics: rec,
			},
			Binder:    controller.CampaignBinder{},
			Responder: responder,
		},
		notifications: &handler.NotificationHandler{
			Service:   &service.NotificationService{Repo: notificationRepo, Logger: logger, Metrics: rec},
			Responder: responder,
		},
		dashboard: &handler.DashboardHandler{
			Stats: &service.StatsService{Counters: map[model.Kind]service.StatusCounter{
				model.KindBlogPost:   blogRepo,
				model.KindSocialPost: socialRepo,
				model.KindCampaign:   campaignRepo,
			}},
			Clients:   &service.ClientService{Repo: clientRepo},
			Responder: responder,
		},
		notifier: &service.NotificationService{Repo: notificationRepo, Logger: logger.Named("notifier"), Metrics: rec},
	}
}
