package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"videoab/internal/core/domain"
)

const maxBodyBytes = 1 << 20

type fieldErrorBody struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Error  string           `json:"error"`
	Status string           `json:"status,omitempty"`
	Fields []fieldErrorBody `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a bounded JSON body into v and answers 400 itself when
// the body is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return false
	}
	return true
}

// errorResponse maps domain errors onto status codes and bodies.
func errorResponse(err error) (int, errorBody) {
	var (
		verr *domain.ValidationError
		nerr *domain.NotFoundError
		serr *domain.IllegalStateError
		derr *domain.DependencyError
	)
	switch {
	case errors.As(err, &verr):
		body := errorBody{Error: "validation failed"}
		for _, f := range verr.Fields {
			body.Fields = append(body.Fields, fieldErrorBody{Field: f.Field, Message: f.Message})
		}
		return http.StatusBadRequest, body
	case errors.As(err, &nerr):
		return http.StatusNotFound, errorBody{Error: nerr.Error()}
	case errors.As(err, &serr):
		return http.StatusConflict, errorBody{Error: serr.Error(), Status: string(serr.Status)}
	case errors.As(err, &derr):
		return http.StatusBadGateway, errorBody{Error: derr.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorBody{Error: "request timed out"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), op+" error", slog.Any("error", err))
	}
	writeJSON(w, status, body)
}
