package quizapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quiz-engine/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client talks to the quiz-generator service over HTTP. It implements
// app.QuizProvider: GET /quizzes/{id} for content, GET /health for
// reachability checks.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// quizDocument mirrors the quiz-generator payload.
type quizDocument struct {
	ID        string `json:"id"`
	Questions []struct {
		Question      string `json:"question"`
		CorrectAnswer string `json:"correct_answer"`
		Explanation   string `json:"explanation"`
	} `json:"questions"`
}

func (c *Client) FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quizzes/"+quizID, nil)
	if err != nil {
		return domain.Quiz{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("quiz service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Quiz{}, fmt.Errorf("quiz service returned status %d", resp.StatusCode)
	}

	var doc quizDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode quiz: %w", err)
	}

	quiz := domain.Quiz{ID: doc.ID, Questions: make([]domain.Question, 0, len(doc.Questions))}
	if quiz.ID == "" {
		quiz.ID = quizID
	}
	for _, q := range doc.Questions {
		quiz.Questions = append(quiz.Questions, domain.Question{
			Prompt:        q.Question,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	return quiz, nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("quiz service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quiz service health returned status %d", resp.StatusCode)
	}
	return nil
}
