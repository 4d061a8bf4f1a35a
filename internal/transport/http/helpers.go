package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quiz-engine/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeServiceError maps the failure taxonomy onto status codes so a
// caller can tell "retry" (409, 502) from "this request will never
// succeed as-is" (400, 404, 422).
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrDuplicateAnswer),
		errors.Is(err, domain.ErrVersionConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrQuestionIndexOutOfRange):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidQuiz):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		log.Printf("upstream failure: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream dependency failed"})
	}
}
