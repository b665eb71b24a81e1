package model

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Difficulty is the difficulty label the generator attaches to a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Known reports whether d is one of the three recognised labels.
func (d Difficulty) Known() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is a single multiple-choice question of a generated quiz.
// Answer is matched against Options by value.
type Question struct {
	Question    string     `json:"question"`
	Options     []string   `json:"options"`
	Answer      string     `json:"answer"`
	Difficulty  Difficulty `json:"difficulty"`
	Explanation string     `json:"explanation"`
}

// HasOption reports whether v is one of the question's options.
func (q Question) HasOption(v string) bool {
	for _, o := range q.Options {
		if o == v {
			return true
		}
	}
	return false
}

// QuizPayload is the full generation result for one source article.
type QuizPayload struct {
	ID            int64      `json:"id"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Summary       string     `json:"summary"`
	KeyEntities   Entities   `json:"key_entities"`
	Sections      []string   `json:"sections"`
	Quiz          []Question `json:"quiz"`
	RelatedTopics []string   `json:"related_topics"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Validate checks the structural rules a payload must satisfy before it is
// stored: a title, at least one question, and at least two options per
// question. An answer that matches no option is allowed.
func (p QuizPayload) Validate() error {
	if p.Title == "" {
		return errors.New("payload has no title")
	}
	if len(p.Quiz) == 0 {
		return errors.New("payload has no questions")
	}
	for i, q := range p.Quiz {
		if q.Question == "" {
			return fmt.Errorf("question %d has no text", i+1)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d has %d options, need at least 2", i+1, len(q.Options))
		}
	}
	return nil
}

// HistoryItem is one row of the previously generated quizzes list.
type HistoryItem struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	QuestionCount int       `json:"question_count"`
}

// Attempt is one viewing of a quiz. Selections maps question index to the
// option the viewer picked; each index is recorded at most once.
type Attempt struct {
	ID         string
	QuizID     int64
	CreatedAt  time.Time
	Selections map[int]string
}

// User is an administrator account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// QuizExport is the top-level JSON structure written by the export command.
type QuizExport struct {
	ExportedAt time.Time     `json:"exported_at"`
	Count      int           `json:"count"`
	Quizzes    []QuizPayload `json:"quizzes"`
}

// AppConfig holds runtime parameters set via CLI flags.
type AppConfig struct {
	BasePath      string // URL prefix for sub-path deployments (e.g. "/quiz")
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
	PromptVariant string // Generation prompt variant (easy, balanced, challenging)
	MinQuestions  int
	MaxQuestions  int
	HistoryOnHome int // number of recent quizzes listed on the home page
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}
