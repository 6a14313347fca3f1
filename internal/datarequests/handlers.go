package datarequests

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// Handlers handles HTTP requests for data-sharing requests
type Handlers struct {
	service *Service
	logger  *logger.Logger
}

// NewHandlers creates new HTTP handlers
func NewHandlers(service *Service, log *logger.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes registers HTTP routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/data-requests", h.CreateDataRequest).Methods("POST")
	router.HandleFunc("/data-requests/{requestID}", h.GetDataRequest).Methods("GET")
	router.HandleFunc("/data-requests/{requestID}/verify", h.VerifyDataRequest).Methods("GET")
}

// CreateDataRequest handles data request creation
func (h *Handlers) CreateDataRequest(w http.ResponseWriter, r *http.Request) {
	var req types.DataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	created, err := h.service.CreateDataRequest(r.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create data request")
		h.writeServiceError(w, err, "creation_failed")
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// GetDataRequest handles data request retrieval
func (h *Handlers) GetDataRequest(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestID"]

	req, err := h.service.GetDataRequest(r.Context(), requestID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get data request", "requestID", requestID)
		h.writeServiceError(w, err, "retrieval_failed")
		return
	}

	h.writeJSON(w, http.StatusOK, req)
}

// VerifyDataRequest runs the authenticity reconciler against the
// request's anchor
func (h *Handlers) VerifyDataRequest(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestID"]

	verdict, err := h.service.VerifyDataRequest(r.Context(), requestID)
	if err != nil {
		h.logger.WithError(err).Error("Data request verification could not run", "requestID", requestID)
		h.writeServiceError(w, err, "verification_unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"requestId":  requestID,
		"validation": verdict,
	})
}

// writeServiceError maps service errors onto HTTP status codes
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error, code string) {
	var platformErr *types.PlatformError
	if errors.As(err, &platformErr) {
		switch platformErr.Type {
		case types.ErrorTypeNotFound:
			h.writeError(w, http.StatusNotFound, code, platformErr.Message)
			return
		case types.ErrorTypeValidation:
			h.writeError(w, http.StatusBadRequest, code, platformErr.Message)
			return
		}
	}

	h.writeError(w, http.StatusInternalServerError, code, err.Error())
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError writes a JSON error response
func (h *Handlers) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
