package handler

import (
	"net/http"

	"github.com/unclebandit/agency-portal-backend/internal/controller"
	"github.com/unclebandit/agency-portal-backend/internal/service"
)

// DashboardHandler serves read-only aggregates: client list and status counts.
type DashboardHandler struct {
	Stats   *service.StatsService
	Clients *service.ClientService
	controller.Responder
}

func (h *DashboardHandler) ListClientsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	clients, err := h.Clients.List(r.Context(), actor)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"data": clients})
}

// StatsHandler returns per-kind status counts, optionally for one ?client_id=.
func (h *DashboardHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	clientID, err := controller.ParseClientID(r)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	stats, err := h.Stats.Dashboard(r.Context(), actor, clientID)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, stats)
}
