package http

import (
	"encoding/json"
	"net/http"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

// RestHandler exposes the session lifecycle over JSON endpoints.
type RestHandler struct {
	service *app.SessionManager
}

func NewRestHandler(service *app.SessionManager) *RestHandler {
	return &RestHandler{service: service}
}

// Register wires the REST routes onto a mux.
func (h *RestHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/session/start", h.handleStart)
	mux.HandleFunc("GET /api/session/{id}", h.handleGet)
	mux.HandleFunc("POST /api/session/{id}/answer", h.handleAnswer)
	mux.HandleFunc("POST /api/session/{id}/complete", h.handleComplete)
	mux.HandleFunc("GET /health", h.handleHealth)
}

type startRequest struct {
	UserID string `json:"userId"`
	QuizID string `json:"quizId"`
}

type startResponse struct {
	SessionID      string               `json:"sessionId"`
	QuizID         string               `json:"quizId"`
	TotalQuestions int                  `json:"totalQuestions"`
	Status         domain.SessionStatus `json:"status"`
	StartedAt      time.Time            `json:"startedAt"`
}

type answerRequest struct {
	QuestionIndex int    `json:"questionIndex"`
	UserAnswer    string `json:"userAnswer"`
}

// sessionResponse is the full session view. The quiz snapshot is
// internal state and never leaves the service.
type sessionResponse struct {
	SessionID         string               `json:"sessionId"`
	UserID            string               `json:"userId"`
	QuizID            string               `json:"quizId"`
	Status            domain.SessionStatus `json:"status"`
	Score             float64              `json:"score"`
	QuestionsAnswered int                  `json:"questionsAnswered"`
	TotalQuestions    int                  `json:"totalQuestions"`
	Answers           []domain.Answer      `json:"answers"`
	StartedAt         time.Time            `json:"startedAt"`
	CompletedAt       *time.Time           `json:"completedAt,omitempty"`
}

type healthResponse struct {
	Status       string `json:"status"`
	Dependencies struct {
		Store           string `json:"store"`
		ContentProvider string `json:"contentProvider"`
	} `json:"dependencies"`
}

func (h *RestHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.UserID == "" || req.QuizID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "userId and quizId are required"})
		return
	}

	session, err := h.service.Start(r.Context(), req.UserID, req.QuizID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startResponse{
		SessionID:      session.ID,
		QuizID:         session.QuizID,
		TotalQuestions: session.TotalQuestions,
		Status:         session.Status,
		StartedAt:      session.StartedAt,
	})
}

func (h *RestHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *RestHandler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), r.PathValue("id"), req.QuestionIndex, req.UserAnswer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *RestHandler) handleComplete(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *RestHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health(r.Context())
	resp := healthResponse{Status: health.Status}
	resp.Dependencies.Store = health.Store
	resp.Dependencies.ContentProvider = health.ContentProvider
	writeJSON(w, http.StatusOK, resp)
}

func toSessionResponse(session domain.Session) sessionResponse {
	answers := session.Answers
	if answers == nil {
		answers = []domain.Answer{}
	}
	return sessionResponse{
		SessionID:         session.ID,
		UserID:            session.UserID,
		QuizID:            session.QuizID,
		Status:            session.Status,
		Score:             session.Score,
		QuestionsAnswered: len(session.Answers),
		TotalQuestions:    session.TotalQuestions,
		Answers:           answers,
		StartedAt:         session.StartedAt,
		CompletedAt:       session.CompletedAt,
	}
}
