// Package handler wires organization management endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veristaff/internal/org/service"
	id "veristaff/pkg/domain"
	"veristaff/pkg/platform/httputil"
	"veristaff/pkg/requestcontext"
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts organization endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/organizations", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{orgID}", h.HandleGet)
		r.Post("/{orgID}/deactivate", h.HandleDeactivate)
		r.Post("/{orgID}/reactivate", h.HandleReactivate)
		r.Get("/{orgID}/domains", h.HandleListDomains)
		r.Post("/{orgID}/domains", h.HandleAddDomain)
	})
}

// HandleCreate handles POST /api/organizations.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateOrgRequest](w, r, h.logger)
	if !ok {
		return
	}

	org, err := h.service.Create(ctx, req.Name, req.Slug)
	if err != nil {
		h.logError(r, "organization creation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, org)
}

// HandleList handles GET /api/organizations.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"organizations": orgs,
		"count":         len(orgs),
	})
}

// HandleGet handles GET /api/organizations/{orgID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgIDParam(w, r)
	if !ok {
		return
	}
	org, err := h.service.Get(r.Context(), orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, org)
}

// HandleDeactivate handles POST /api/organizations/{orgID}/deactivate.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgIDParam(w, r)
	if !ok {
		return
	}
	org, err := h.service.Deactivate(r.Context(), orgID)
	if err != nil {
		h.logError(r, "organization deactivation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, org)
}

// HandleReactivate handles POST /api/organizations/{orgID}/reactivate.
func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgIDParam(w, r)
	if !ok {
		return
	}
	org, err := h.service.Reactivate(r.Context(), orgID)
	if err != nil {
		h.logError(r, "organization reactivation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, org)
}

// HandleAddDomain handles POST /api/organizations/{orgID}/domains.
func (h *Handler) HandleAddDomain(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddDomainRequest](w, r, h.logger)
	if !ok {
		return
	}

	entry, err := h.service.AddDomain(r.Context(), orgID, req.Domain)
	if err != nil {
		h.logError(r, "domain claim failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

// HandleListDomains handles GET /api/organizations/{orgID}/domains.
func (h *Handler) HandleListDomains(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgIDParam(w, r)
	if !ok {
		return
	}
	domains, err := h.service.ListDomains(r.Context(), orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"domains": domains,
		"count":   len(domains),
	})
}

func (h *Handler) orgIDParam(w http.ResponseWriter, r *http.Request) (id.OrgID, bool) {
	orgID, err := id.ParseOrgID(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.OrgID{}, false
	}
	return orgID, true
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"path", r.URL.Path,
		"error", err,
	)
}
