// Package handler exposes the candidate compliance summary endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veristaff/internal/compliance"
	identity "veristaff/internal/identity/models"
	id "veristaff/pkg/domain"
	"veristaff/pkg/platform/httputil"
	"veristaff/pkg/requestcontext"
)

// UserDirectory resolves candidate ids to accounts for display names.
type UserDirectory interface {
	GetUser(ctx context.Context, userID id.UserID) (*identity.User, error)
}

type Handler struct {
	service *compliance.Service
	users   UserDirectory
	logger  *slog.Logger
}

func New(service *compliance.Service, users UserDirectory, logger *slog.Logger) *Handler {
	return &Handler{service: service, users: users, logger: logger}
}

// Register mounts the compliance endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/candidates/{userID}/compliance", h.HandleCandidateSummary)
}

// HandleCandidateSummary handles GET /api/candidates/{userID}/compliance.
func (h *Handler) HandleCandidateSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	candidate, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.users.GetUser(ctx, candidate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary, err := h.service.CandidateSummary(ctx, candidate, user.DisplayName)
	if err != nil {
		h.logger.ErrorContext(ctx, "compliance summary failed",
			"request_id", requestcontext.RequestID(ctx),
			"candidate_id", candidate,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
