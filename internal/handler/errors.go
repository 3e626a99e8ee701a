package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/loginlimit"
	"github.com/pkordes/driftboat/internal/middleware"
	"github.com/pkordes/driftboat/internal/service"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request. Fields is set for validation
// errors; Lockout for login responses.
type ErrorDetail struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Fields  domain.FieldErrors `json:"fields,omitempty"`
	Lockout *loginlimit.Status `json:"lockout,omitempty"`
}

// internalMessage is the only detail a client gets about a backend failure.
const internalMessage = "request failed, please retry"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// fail maps a service error to its HTTP response. what names the thing
// being looked up ("trip") for not-found messages. Unrecognized errors are
// logged and reported as a generic 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, what string) {
	var (
		fields  domain.FieldErrors
		locked  *loginlimit.LockedError
		failure *service.LoginFailure
	)
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{
			Code:    "validation_error",
			Message: "Please correct the highlighted fields.",
			Fields:  fields,
		}})
	case errors.As(err, &locked):
		st := locked.Status
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(st)))
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: ErrorDetail{
			Code: "locked", Message: st.Message, Lockout: &st,
		}})
	case errors.As(err, &failure):
		st := failure.Status
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: ErrorDetail{
			Code: "invalid_credentials", Message: st.Message, Lockout: &st,
		}})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "not_found", what+" not found")
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeProblem(w, http.StatusConflict, "invalid_transition", "that status change is not allowed")
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "conflict", fmt.Sprintf("%s is still in use", what))
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	default:
		attrs := []any{"method", r.Method, "path", r.URL.Path, "error", err}
		if c, ok := middleware.ClaimsFrom(r.Context()); ok {
			attrs = append(attrs, "admin", c.Subject)
		}
		s.log.ErrorContext(r.Context(), "request failed", attrs...)
		writeProblem(w, http.StatusInternalServerError, "internal", internalMessage)
	}
}

// badRequest reports a request rejected before reaching the service layer
// (malformed body or query string).
func badRequest(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeProblem(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body is too large")
		return
	}
	writeProblem(w, http.StatusBadRequest, "bad_request", err.Error())
}

func retryAfterSeconds(st loginlimit.Status) int {
	d := st.RetryAfter(time.Now())
	return int((d + time.Second - 1) / time.Second)
}
