package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/billmatch/internal/domain"
)

// Error codes returned in errorResponse.Code.
const (
	CodeBadRequest              = "bad_request"
	CodeUnauthorized            = "unauthorized"
	CodeValidationFailed        = "validation_failed"
	CodeNotFound                = "not_found"
	CodeMethodNotAllowed        = "method_not_allowed"
	CodeAlreadyExists           = "already_exists"
	CodeBillNotRemovable        = "bill_not_removable"
	CodeInvalidStatusTransition = "invalid_status_transition"
	CodeInternalError           = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// sentinelCodes maps domain sentinels to their HTTP status and error code.
var sentinelCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidStatusTransition, http.StatusBadRequest, CodeInvalidStatusTransition},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists},
	{domain.ErrBillNotRemovable, http.StatusConflict, CodeBillNotRemovable},
}

func defaultErrorHandlers() []errorHandler {
	handlers := []errorHandler{invalidArgumentHandler}
	for _, sc := range sentinelCodes {
		handlers = append(handlers, sentinelHandler(sc.err, sc.status, sc.code))
	}
	return handlers
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidArgumentHandler reports the offending field when the error carries one.
func invalidArgumentHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidArgument) {
		return false
	}
	var iae *domain.InvalidArgumentError
	if errors.As(err, &iae) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    CodeValidationFailed,
			Message: iae.Error(),
			Field:   iae.Field,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, CodeValidationFailed, msg)
	return true
}

// errorBody builds the error payload for one entry of a batch response.
// The second result is false for errors that are not domain errors.
func errorBody(err error) (errorResponse, bool) {
	var iae *domain.InvalidArgumentError
	if errors.As(err, &iae) {
		return errorResponse{Code: CodeValidationFailed, Message: iae.Error(), Field: iae.Field}, true
	}
	if errors.Is(err, domain.ErrInvalidArgument) {
		return errorResponse{Code: CodeValidationFailed, Message: safeDomainMessage(err)}, true
	}
	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			return errorResponse{Code: sc.code, Message: safeDomainMessage(err)}, true
		}
	}
	return errorResponse{Code: CodeInternalError, Message: "internal error"}, false
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrInvalidStatusTransition,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrBillNotRemovable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.log(r)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
