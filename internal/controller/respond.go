package controller

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/agency-portal-backend/internal/auth"
	appErrors "github.com/unclebandit/agency-portal-backend/internal/errors"
	"github.com/unclebandit/agency-portal-backend/internal/model"
)

// Responder writes JSON bodies and turns errors into {"error","detail"} responses.
type Responder struct {
	Logger *zap.Logger
	// Debug adds the underlying error to 5xx bodies. Off in production.
	Debug bool
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (rs Responder) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil && rs.Logger != nil {
		rs.Logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := appErrors.HTTPStatus(err)
	body := errorBody{Error: appErrors.PublicMessage(err)}
	if status >= http.StatusInternalServerError {
		if rs.Logger != nil {
			rs.Logger.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		if rs.Debug {
			body.Detail = err.Error()
		}
	}
	rs.JSON(w, status, body)
}

// Actor returns the authenticated actor or writes a 401.
func (rs Responder) Actor(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		rs.Error(w, r, appErrors.NewAuthError("missing session"))
		return model.Actor{}, false
	}
	return actor, true
}
