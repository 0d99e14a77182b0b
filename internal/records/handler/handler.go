// Package handler wires record CRUD endpoints to the records service. Each
// of the six record kinds is a first-class resource under /api/{kind}.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veristaff/internal/records/models"
	"veristaff/internal/records/service"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
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

// Register mounts record endpoints on the router. The {kind} parameter is
// validated on every request; unknown kinds are 404s, not empty listings.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/{kind}", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{recordID}", h.HandleGet)
		r.Put("/{recordID}", h.HandleUpdate)
		r.Delete("/{recordID}", h.HandleDelete)
	})
}

// HandleList handles GET /api/{kind}.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}

	views, err := h.service.List(ctx, kind)
	if err != nil {
		h.logError(r, "record listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		string(kind): views,
		"count":      len(views),
	})
}

// HandleGet handles GET /api/{kind}/{recordID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(ctx, recordID)
	if err != nil {
		h.logError(r, "record fetch failed", err)
		httputil.WriteError(w, err)
		return
	}
	if view.Kind != kind {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "record not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleCreate handles POST /api/{kind}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RecordRequest](w, r, h.logger)
	if !ok {
		return
	}

	input := req.Input()
	input.Kind = kind
	view, err := h.service.Create(ctx, input)
	if err != nil {
		h.logError(r, "record creation failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "record created",
		"request_id", requestcontext.RequestID(ctx),
		"record_id", view.ID,
		"kind", kind,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, view)
}

// HandleUpdate handles PUT /api/{kind}/{recordID}. Full replacement, last
// write wins.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RecordRequest](w, r, h.logger)
	if !ok {
		return
	}

	input := req.Input()
	input.Kind = kind
	view, err := h.service.Update(ctx, recordID, input)
	if err != nil {
		h.logError(r, "record update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /api/{kind}/{recordID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.kindParam(w, r); !ok {
		return
	}
	recordID, ok := h.recordIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, recordID); err != nil {
		h.logError(r, "record deletion failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) kindParam(w http.ResponseWriter, r *http.Request) (models.Kind, bool) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown record kind"))
		return "", false
	}
	return kind, true
}

func (h *Handler) recordIDParam(w http.ResponseWriter, r *http.Request) (id.RecordID, bool) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.RecordID{}, false
	}
	return recordID, true
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"path", r.URL.Path,
		"error", err,
	)
}
