package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/transport/auth"

	"go.uber.org/zap"
)

type APIResponse struct {
	ErrorCode int    `json:"error_code"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
}

func Response(w http.ResponseWriter, message string, data any, errorCode int, status string, httpStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	response := APIResponse{
		ErrorCode: errorCode,
		Status:    status,
		Message:   message,
		Data:      data,
	}

	_ = json.NewEncoder(w).Encode(response)
}

func Success(w http.ResponseWriter, message string, data any) {
	Response(w, message, data, 0, "success", http.StatusOK)
}

func SuccessCreated(w http.ResponseWriter, message string, data any) {
	Response(w, message, data, 0, "success", http.StatusCreated)
}

func SuccessAccepted(w http.ResponseWriter, message string, data any) {
	Response(w, message, data, 0, "success", http.StatusAccepted)
}

func Error(w http.ResponseWriter, message string, errorCode int, httpStatus int) {
	Response(w, message, nil, errorCode, "error", httpStatus)
}

func ErrorBadRequest(w http.ResponseWriter, message string) {
	Error(w, message, 400, http.StatusBadRequest)
}

func ErrorUnauthorized(w http.ResponseWriter, message string) {
	Error(w, message, 401, http.StatusUnauthorized)
}

func ErrorForbidden(w http.ResponseWriter, message string) {
	Error(w, message, 403, http.StatusForbidden)
}

func ErrorNotFound(w http.ResponseWriter, message string) {
	Error(w, message, 404, http.StatusNotFound)
}

func ErrorInternal(w http.ResponseWriter, message string) {
	Error(w, message, 500, http.StatusInternalServerError)
}

// ErrorValidation answers 400 with the message verbatim and the offending field in data.
func ErrorValidation(w http.ResponseWriter, ve *domain.ValidationError) {
	var data any
	if ve.Field != "" {
		data = map[string]string{"field": ve.Field}
	}
	Response(w, ve.Message, data, 400, "error", http.StatusBadRequest)
}

// writeError maps a use-case error to its HTTP answer. Unexpected errors are logged and hidden.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		ErrorValidation(w, ve)
	case errors.Is(err, domain.ErrForbidden):
		ErrorForbidden(w, "You do not have permission to perform this action")
	case errors.Is(err, domain.ErrPaymentNotFound):
		ErrorNotFound(w, "Payment not found")
	case errors.Is(err, domain.ErrNotFound):
		ErrorNotFound(w, "Not found")
	default:
		h.logger.Error(op,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		ErrorInternal(w, "internal error")
	}
}

// actor returns the authenticated caller, answering 401 when there is none.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	a, err := auth.GetActor(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return domain.Actor{}, false
	}
	return a, true
}
