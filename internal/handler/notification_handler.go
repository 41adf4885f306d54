package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/unclebandit/agency-portal-backend/internal/controller"
	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/service"
)

// NotificationHandler serves the notification inbox and per-client settings.
type NotificationHandler struct {
	Service *service.NotificationService
	controller.Responder
}

func (h *NotificationHandler) Routes(r chi.Router) {
	r.Get("/", h.ListNotificationsHandler)
	r.Post("/read-all", h.MarkAllReadHandler)
	r.Post("/{id}/read", h.MarkReadHandler)
}

func (h *NotificationHandler) SettingsRoutes(r chi.Router) {
	r.Get("/", h.GetSettingsHandler)
	r.Put("/", h.UpdateSettingsHandler)
}

// ListNotificationsHandler supports ?unread=true, ?limit= and, for agency users, ?client_id=.
func (h *NotificationHandler) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	clientID, err := controller.ParseClientID(r)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.Service.List(r.Context(), actor, clientID, unread, limit)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"data": list})
}

func (h *NotificationHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.Error(w, r, appErrors.NewValidation("invalid notification id %q", idStr))
		return
	}

	n, err := h.Service.MarkRead(r.Context(), actor, id)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	count, err := h.Service.MarkAllRead(r.Context(), actor)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]int{"updated": count})
}

func (h *NotificationHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	clientID, err := controller.ParseClientID(r)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	settings, err := h.Service.Settings(r.Context(), actor, clientID)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, settings)
}

// UpdateSettingsHandler takes a partial map of action to enabled, e.g. {"submitted": false}.
func (h *NotificationHandler) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	clientID, err := controller.ParseClientID(r)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	var changes map[string]bool
	if err := controller.DecodeJSON(w, r, &changes); err != nil {
		h.Error(w, r, err)
		return
	}

	settings, err := h.Service.UpdateSettings(r.Context(), actor, clientID, changes)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, settings)
}
