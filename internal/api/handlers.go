package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/pos-catalog/internal/model"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type handler struct {
	catalog Catalog
}

type errorResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listPos(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Pos{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getPos(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) upsertPos(w http.ResponseWriter, r *http.Request) {
	var in model.Pos
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	p, err := h.catalog.Upsert(r.Context(), &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) clearPos(w http.ResponseWriter, r *http.Request) {
	if _, err := h.catalog.Clear(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) importOsmNode(w http.ResponseWriter, r *http.Request) {
	nodeID, err := strconv.ParseInt(chi.URLParam(r, "nodeId"), 10, 64)
	if err != nil || nodeID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "nodeId must be a positive integer"})
		return
	}

	p, err := h.catalog.ImportFromOsmNode(r.Context(), nodeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// statusFor maps catalog errors to HTTP statuses.
func statusFor(err error) int {
	var (
		notFound  *model.PosNotFoundError
		nodeGone  *model.NodeNotFoundError
		missing   *model.MissingFieldsError
		parse     *model.ParseError
		duplicate *model.DuplicateNameError
		invalid   *model.InvalidPosError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &nodeGone):
		return http.StatusNotFound
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.As(err, &parse):
		return http.StatusBadGateway
	case errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var missing *model.MissingFieldsError
	if errors.As(err, &missing) {
		resp.MissingFields = missing.Fields
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("api: request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}
