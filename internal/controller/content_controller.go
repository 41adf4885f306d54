package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
	"github.com/unclebandit/agency-portal-backend/internal/service"
)

// ContentController serves the review routes of one content kind.
type ContentController[T model.Reviewable] struct {
	Service *service.ReviewService[T]
	Binder  Binder[T]
	Responder
}

func (c *ContentController[T]) Routes(r chi.Router) {
	r.Post("/", c.Create)
	r.Get("/", c.List)
	r.Get("/{id}", c.Get)
	r.Put("/{id}", c.Update)
	r.Post("/{id}/review", c.Review)
	r.Delete("/{id}", c.Delete)
}

func (c *ContentController[T]) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.Actor(w, r)
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	item, err := c.Binder.New(body)
	if err != nil {
		c.Error(w, r, err)
		return
	}

	created, err := c.Service.Create(r.Context(), actor, item)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.JSON(w, http.StatusCreated, created)
}

func (c *ContentController[T]) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.Actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	clientID, err := ParseClientID(r)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	filter := model.ContentFilter{
		TenantID: clientID,
		Status:   model.Status(q.Get("status")),
		Search:   strings.TrimSpace(q.Get("q")),
	}

	items, pagination, err := c.Service.List(r.Context(), actor, filter, page, pageSize)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": pagination,
	})
}

func (c *ContentController[T]) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.Actor(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		c.Error(w, r, err)
		return
	}
	item, err := c.Service.Get(r.Context(), actor, id)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.JSON(w, http.StatusOK, item)
}

// Update edits payload fields and applies the requested status change, if any.
// pending_review submits, draft withdraws and published publishes. Reviews go through /review.
func (c *ContentController[T]) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.Actor(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		c.Error(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		c.Error(w, r, err)
		return
	}

	var statusBody struct {
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(body, &statusBody); err != nil {
		c.Error(w, r, appErrors.NewValidation("invalid request body: %v", err))
		return
	}
	var status model.Status
	if statusBody.Status != nil {
		parsed, known := model.ParseStatus(*statusBody.Status)
		if !known {
			c.Error(w, r, appErrors.NewValidation("unknown status %q", *statusBody.Status))
			return
		}
		status = parsed
	}

	change, hasPayload, err := c.Binder.Patch(body)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	if !hasPayload {
		change = nil
	}

	item, err := c.Service.Update(r.Context(), actor, id, change, status)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.JSON(w, http.StatusOK, item)
}

func (c *ContentController[T]) Review(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.Actor(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		c.Error(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	var in struct {
		Action          string `json:"action" validate:"required,oneof=approve reject"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := decode(body, &in); err != nil {
		c.Error(w, r, err)
		return
	}

	item, err := c.Service.Review(r.Context(), actor, id, in.Action, in.RejectionReason)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.JSON(w, http.StatusOK, item)
}

func (c *ContentController[T]) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.Actor(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		c.Error(w, r, err)
		return
	}
	if err := c.Service.Delete(r.Context(), actor, id); err != nil {
		c.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
