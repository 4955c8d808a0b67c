package lookup

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ip-lookup/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// LookupRequest is the body of POST /lookup
type LookupRequest struct {
	IP string `json:"ip" validate:"required,ipv4"`
}

var requestMessages = map[string]string{
	"required": "IP address cannot be empty.",
	"ipv4":     "Please enter a valid IPv4 address.",
}

const maxRequestBody = 1 << 10

// LookupHandlers serves the lookup endpoints
type LookupHandlers struct {
	Service  *LookupService
	validate *validator.Validate
}

// NewLookupHandlers creates the lookup HTTP handlers
func NewLookupHandlers(service *LookupService) *LookupHandlers {
	return &LookupHandlers{Service: service, validate: validator.New()}
}

// RegisterRoutes mounts the lookup endpoints on r
func (h *LookupHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/lookup", h.Lookup).Methods(http.MethodPost)
	r.HandleFunc("/lookup/history", h.GetHistory).Methods(http.MethodGet)
	r.HandleFunc("/lookup/history/{ip}", h.GetOne).Methods(http.MethodGet)
}

// Lookup handles POST /lookup
func (h *LookupHandlers) Lookup(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &ValidationError{Message: "Invalid request body"})
		return
	}
	if err := h.validateRequest(&req); err != nil {
		writeError(w, err)
		return
	}

	record, err := h.Service.Lookup(r.Context(), req.IP)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// GetHistory handles GET /lookup/history
func (h *LookupHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, &ValidationError{Message: "limit must be an integer"})
			return
		}
		limit = n
	}

	records, err := h.Service.GetHistory(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetOne handles GET /lookup/history/{ip}
func (h *LookupHandlers) GetOne(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.GetOne(r.Context(), mux.Vars(r)["ip"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *LookupHandlers) validateRequest(req *LookupRequest) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := requestMessages[verrs[0].Tag()]; ok {
			return &ValidationError{Message: msg}
		}
	}
	return &ValidationError{Message: invalidIPMessage}
}

// StatusCode maps a service error to its HTTP status
func StatusCode(err error) int {
	var (
		validationErr *ValidationError
		rejectedErr   *UpstreamRejectedError
		notFoundErr   *NotFoundError
		upstreamErr   *UpstreamError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &rejectedErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.L().Error("request_failed", zap.Error(err))
		msg = "Internal server error"
	}
	WriteError(w, status, msg)
}

// WriteError writes {"error": msg, "message": msg} with status
func WriteError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Warn("response_encode_failed", zap.Error(err))
	}
}
