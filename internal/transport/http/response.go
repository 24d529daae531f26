package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"web3-quiz-service/internal/domain"
	"web3-quiz-service/internal/validation"
)

// ErrCode identifies an API error independently of its message.
type ErrCode string

const (
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrCategoryRequired ErrCode = "CATEGORY_REQUIRED"
	ErrInvalidPayload   ErrCode = "INVALID_PAYLOAD"
	ErrInvalidID        ErrCode = "INVALID_ID"
	ErrUnauthorized     ErrCode = "UNAUTHORIZED"
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrInvalidClaim     ErrCode = "INVALID_CLAIM"
	ErrClaimDisabled    ErrCode = "CLAIM_DISABLED"
	ErrProvider         ErrCode = "PROVIDER_ERROR"
	ErrInternal         ErrCode = "INTERNAL_ERROR"
)

type envelope struct {
	Data     any        `json:"data"`
	Error    *errorBody `json:"error,omitempty"`
	Metadata metadata   `json:"metadata"`
}

type errorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// statusCoder is implemented by upstream errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, status, envelope{Data: data, Metadata: buildMetadata(r)})
}

func writeFail(w http.ResponseWriter, r *http.Request, status int, code ErrCode, message string, fields map[string]string) {
	writeEnvelope(w, status, envelope{
		Error:    &errorBody{Code: code, Message: message, Fields: fields},
		Metadata: buildMetadata(r),
	})
}

// writeError maps an error to its status and code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve govalidator.ValidationErrors
	var sc statusCoder
	switch {
	case errors.As(err, &ve):
		writeFail(w, r, http.StatusBadRequest, ErrValidation, "validation failed", validation.Translate(err))
	case errors.Is(err, domain.ErrCategoryRequired):
		writeFail(w, r, http.StatusBadRequest, ErrCategoryRequired, domain.CategoryAlert, nil)
	case errors.Is(err, domain.ErrNoIdentity):
		writeFail(w, r, http.StatusUnauthorized, ErrUnauthorized, "not signed in", nil)
	case errors.Is(err, domain.ErrRewardNotFound), errors.Is(err, domain.ErrSessionNotFound):
		writeFail(w, r, http.StatusNotFound, ErrNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidClaim):
		writeFail(w, r, http.StatusBadRequest, ErrInvalidClaim, err.Error(), nil)
	case errors.Is(err, domain.ErrClaimDisabled):
		writeFail(w, r, http.StatusNotImplemented, ErrClaimDisabled, err.Error(), nil)
	case errors.As(err, &sc) && sc.StatusCode() >= 400 && sc.StatusCode() < 500:
		writeFail(w, r, sc.StatusCode(), ErrProvider, err.Error(), nil)
	default:
		writeFail(w, r, http.StatusInternalServerError, ErrInternal, "internal server error", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(dst)
}

func writeEnvelope(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func buildMetadata(r *http.Request) metadata {
	id := middleware.GetReqID(r.Context())
	if id == "" {
		id = uuid.NewString()
	}
	return metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
