// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"

	"gitpanel/internal/errors"
	"gitpanel/internal/logging"
	"gitpanel/internal/validation"
	"gitpanel/shared/types"

	"go.uber.org/zap"
)

type Handler struct {
	svc    Service
	logger *logging.Logger
}

func NewHandler(svc Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /api/status", h.Status)
	mux.HandleFunc("POST /api/add", h.Add)
	mux.HandleFunc("POST /api/commit", h.Commit)
	mux.HandleFunc("POST /api/commit-changes", h.CommitChanges)
	mux.HandleFunc("POST /api/history", h.History)
	return mux
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok"})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeRequest(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.svc.Status(req.LocalPath)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeRequest(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.svc.Add(req.LocalPath)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeRequest(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.svc.Commit(req.LocalPath, req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) CommitChanges(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeRequest(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.svc.CommitChanges(req.LocalPath, req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	code := http.StatusOK
	if resp.Committed() {
		code = http.StatusCreated
	}
	writeJSON(w, code, resp)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeRequest(w, r, validation.RequireFilePath)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.svc.History(req.LocalPath, req.FilePath)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	errType := "INTERNAL"
	if e, ok := errors.As(err); ok {
		code = e.Code
		errType = string(e.Type)
	}

	log := h.logger.WithRequestID(r.Context())
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("type", errType),
		zap.Error(err),
	}
	if code >= http.StatusInternalServerError {
		log.Error("request failed", fields...)
	} else {
		log.Info("request rejected", fields...)
	}

	writeJSON(w, code, types.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
