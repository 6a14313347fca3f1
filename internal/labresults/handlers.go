package labresults

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// Handlers handles HTTP requests for lab results
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
	router.HandleFunc("/lab-results", h.CreateLabResult).Methods("POST")
	router.HandleFunc("/lab-results/{resultID}", h.GetLabResult).Methods("GET")
	router.HandleFunc("/lab-results/{resultID}/verify", h.VerifyLabResult).Methods("GET")
}

// createLabResultRequest is the create request body. Document carries
// the base64-encoded result document when the caller wants the hash
// computed server-side.
type createLabResultRequest struct {
	PatientID  string `json:"patientId"`
	DoctorID   string `json:"doctorId,omitempty"`
	TestType   string `json:"testType"`
	ContentID  string `json:"contentId"`
	RecordHash string `json:"recordHash,omitempty"`
	Document   string `json:"document,omitempty"`
}

// CreateLabResult handles lab result creation
func (h *Handlers) CreateLabResult(w http.ResponseWriter, r *http.Request) {
	var req createLabResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	var document []byte
	if req.Document != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Document)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "Document must be base64-encoded")
			return
		}
		document = decoded
	}

	result := &types.LabResult{
		PatientID:  req.PatientID,
		DoctorID:   req.DoctorID,
		TestType:   req.TestType,
		ContentID:  req.ContentID,
		RecordHash: req.RecordHash,
	}

	created, err := h.service.CreateLabResult(r.Context(), result, document)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create lab result")
		h.writeServiceError(w, err, "creation_failed")
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// GetLabResult handles lab result retrieval
func (h *Handlers) GetLabResult(w http.ResponseWriter, r *http.Request) {
	resultID := mux.Vars(r)["resultID"]

	result, err := h.service.GetLabResult(r.Context(), resultID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get lab result", "resultID", resultID)
		h.writeServiceError(w, err, "retrieval_failed")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// VerifyLabResult runs the authenticity reconciler against the lab
// result's anchor. The verdict is returned verbatim with HTTP 200 even
// when verification fails; only infrastructure failures are 500s.
func (h *Handlers) VerifyLabResult(w http.ResponseWriter, r *http.Request) {
	resultID := mux.Vars(r)["resultID"]

	verdict, err := h.service.VerifyLabResult(r.Context(), resultID)
	if err != nil {
		h.logger.WithError(err).Error("Lab result verification could not run", "resultID", resultID)
		h.writeServiceError(w, err, "verification_unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"labResultId": resultID,
		"validation":  verdict,
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
