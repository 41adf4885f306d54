package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/unclebandit/agency-portal-backend/internal/auth"
	"github.com/unclebandit/agency-portal-backend/internal/middleware"
)

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(a.logger, a.metrics))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", a.healthz)
	r.Handle("/metrics", a.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(a.secret))
		r.Use(a.limiter.Handler)

		r.Route("/blog-posts", a.blogPosts.Routes)
		r.Route("/social-posts", a.socialPosts.Routes)
		r.Route("/campaigns", a.campaigns.Routes)

		r.Route("/notifications", a.notifications.Routes)
		r.Route("/notification-settings", a.notifications.SettingsRoutes)

		r.Get("/clients", a.dashboard.ListClientsHandler)
		r.Get("/dashboard/stats", a.dashboard.StatsHandler)
	})
	return r
}

func (a *app) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.db.PingContext(ctx); err != nil {
		a.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
		return
	}
	a.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
