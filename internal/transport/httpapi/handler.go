// Package httpapi exposes the transsaction service over REST.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-transsaction-cache/pkg/logger"
	"github.com/goliatone/go-transsaction-cache/repositorycache"
)

// DefaultLocationBase prefixes the Location header of created and updated records.
const DefaultLocationBase = "http://register:9081/transsaction"

// Handler serves the /v1/transsaction resource.
type Handler struct {
	service      repositorycache.Service
	logger       logger.Logger
	locationBase string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLocationBase overrides the prefix used for Location headers.
func WithLocationBase(base string) HandlerOption {
	return func(h *Handler) {
		h.locationBase = strings.TrimRight(base, "/")
	}
}

// NewHandler builds a handler over svc.
func NewHandler(svc repositorycache.Service, log logger.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{service: svc, logger: log, locationBase: DefaultLocationBase}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/transsaction", func(r chi.Router) {
		r.Get("/findAll", h.HandleFindAll)
		r.Get("/findById/{id}", h.HandleFindByID)
		r.Get("/findByIdentityDni/{identityDni}", h.HandleFindByIdentityDni)
		r.Post("/", h.HandleCreate)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleFindAll lists every record. A degraded listing is still a 200.
func (h *Handler) HandleFindAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	h.logger.Info("findAll executed", "request_id", requestID)

	out := make([]TranssactionModel, 0)
	for rec, err := range h.service.FindAll(ctx) {
		if err != nil {
			h.logger.Error("find all failed", "error", err, "request_id", requestID)
			writeError(w, errInternal(err))
			return
		}
		out = append(out, FromEntity(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleFindByID returns one record by id.
func (h *Handler) HandleFindByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	id := chi.URLParam(r, "id")

	rec, ok, err := h.service.FindByID(ctx, id)
	if err != nil {
		h.logger.Error("find by id failed", "error", err, "request_id", requestID, "id", id)
		writeError(w, errInternal(err))
		return
	}
	if !ok {
		writeError(w, errNotFound())
		return
	}
	writeJSON(w, http.StatusOK, FromEntity(rec))
}

// HandleFindByIdentityDni returns the earliest record registered for a DNI.
func (h *Handler) HandleFindByIdentityDni(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	dni := chi.URLParam(r, "identityDni")
	h.logger.Info("findByIdentityDni executed", "identity_dni", dni, "request_id", requestID)

	rec, ok, err := h.service.FindByIdentityDni(ctx, dni)
	if err != nil {
		h.logger.Error("find by identity dni failed", "error", err, "request_id", requestID)
		writeError(w, errInternal(err))
		return
	}
	if !ok {
		writeError(w, errNotFound())
		return
	}
	writeJSON(w, http.StatusOK, FromEntity(rec))
}

// HandleCreate registers a record. An empty result, including a degraded
// one, answers 404.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.logger.Info("create executed", "identity_dni", req.IdentityDni, "request_id", requestID)

	rec, ok, err := h.service.Create(ctx, req.ToEntity())
	if err != nil {
		h.logger.Error("create failed", "error", err, "request_id", requestID)
		writeError(w, errInternal(err))
		return
	}
	if !ok {
		writeError(w, errNotFound())
		return
	}
	h.writeLocated(w, FromEntity(rec))
}

// HandleUpdate merges the request onto the stored record. An empty result
// answers 400.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	id := chi.URLParam(r, "id")

	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.logger.Info("updateById executed", "id", id, "request_id", requestID)

	rec, ok, err := h.service.Update(ctx, id, req.ToEntity())
	if err != nil {
		h.logger.Error("update failed", "error", err, "request_id", requestID, "id", id)
		writeError(w, errInternal(err))
		return
	}
	if !ok {
		writeError(w, errBadRequest("transsaction not updated"))
		return
	}
	h.writeLocated(w, FromEntity(rec))
}

// HandleDelete removes a record. The body is empty either way.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	id := chi.URLParam(r, "id")
	h.logger.Info("deleteById executed", "id", id, "request_id", requestID)

	_, ok, err := h.service.Delete(ctx, id)
	if err != nil {
		h.logger.Error("delete failed", "error", err, "request_id", requestID, "id", id)
		writeError(w, errInternal(err))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*TranssactionModel, bool) {
	var req TranssactionModel
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, errBadRequest("invalid request body"))
		return nil, false
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		h.logger.Warn("invalid request", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, errValidation(err))
		return nil, false
	}
	return &req, true
}

func (h *Handler) writeLocated(w http.ResponseWriter, body TranssactionModel) {
	w.Header().Set("Location", h.locationBase+"/"+body.ID)
	writeJSON(w, http.StatusCreated, body)
}
