// internal/app/features/errors/errors.go
package errors

import (
	"errors"
	"net/http"

	"github.com/dalemusser/stratacms/internal/app/store/storeutil"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// InternalMessage is the client-facing body for unexpected failures.
const InternalMessage = "internal server error"

// ErrorLogger wraps the zap logger for error logging.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

func requestFields(r *http.Request) []zap.Field {
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}
	if id := chimw.GetReqID(r.Context()); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	return fields
}

// Log logs an error with the given message and error.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.LogWithFields(r, msg, err)
}

// LogWithFields logs an error with additional fields.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	all := append([]zap.Field{zap.Error(err)}, requestFields(r)...)
	e.logger.Error(msg, append(all, fields...)...)
}

// Internal logs err and writes a 500 JSON response.
func (e *ErrorLogger) Internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e.Log(r, msg, err)
	jsonutil.InternalError(w, InternalMessage)
}

// StoreError writes the response for an error returned by a store write.
// Validation problems and slug conflicts are the client's fault (400);
// anything else is logged with msg and reported as a 500.
func (e *ErrorLogger) StoreError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var verr *storeutil.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonutil.ValidationError(w, verr.Fields)
	case errors.Is(err, storeutil.ErrDuplicateSlug):
		jsonutil.BadRequest(w, err.Error())
	default:
		e.Internal(w, r, msg, err)
	}
}

// Handler provides the router-level JSON fallbacks.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound writes 404 {"error": "not found"} for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	jsonutil.NotFound(w, "not found")
}

// MethodNotAllowed writes 405 for a known path with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonutil.Error(w, http.StatusMethodNotAllowed, "method not allowed")
}
