// Package handler exposes the audit trail read endpoint. Visibility follows
// the same capability table as records: platform admins see everything, org
// admins their organization's trail, candidates only their own actions.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"veristaff/internal/activity"
	identity "veristaff/internal/identity/models"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
	"veristaff/pkg/platform/httputil"
	"veristaff/pkg/requestcontext"
)

const maxLimit = 500

type Handler struct {
	trail  *activity.Logger
	logger *slog.Logger
}

func New(trail *activity.Logger, logger *slog.Logger) *Handler {
	return &Handler{trail: trail, logger: logger}
}

// Register mounts the activity endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/activity", h.HandleList)
}

// HandleList handles GET /api/activity. Optional query parameters: entity,
// limit, and (platform admins only) organization_id.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requestcontext.GetActor(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	query, err := scopedQuery(actor, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.trail.List(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "activity listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activity"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// scopedQuery narrows the listing to what the actor may see before the
// store runs it.
func scopedQuery(actor requestcontext.Actor, r *http.Request) (activity.ListQuery, error) {
	query := activity.ListQuery{
		Entity: r.URL.Query().Get("entity"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			return activity.ListQuery{}, dErrors.New(dErrors.CodeInvalidInput, "limit must be between 1 and 500")
		}
		query.Limit = limit
	}

	switch identity.Role(actor.Role) {
	case identity.RolePlatformAdmin:
		if raw := r.URL.Query().Get("organization_id"); raw != "" {
			orgID, err := id.ParseOrgID(raw)
			if err != nil {
				return activity.ListQuery{}, err
			}
			query.OrgID = &orgID
		}
		return query, nil
	case identity.RoleOrgSuperAdmin, identity.RoleAdmin:
		if actor.OrgID.IsNil() {
			return activity.ListQuery{}, dErrors.New(dErrors.CodeForbidden, "administrator has no organization scope")
		}
		orgID := actor.OrgID
		query.OrgID = &orgID
		return query, nil
	case identity.RoleCandidate:
		userID := actor.UserID
		query.ActorUserID = &userID
		return query, nil
	default:
		return activity.ListQuery{}, dErrors.New(dErrors.CodeForbidden, "unknown role")
	}
}
