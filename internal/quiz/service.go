// Package quiz turns a Wikipedia URL into a stored quiz payload.
package quiz

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pavelanni/wikiquiz/internal/llm"
	"github.com/pavelanni/wikiquiz/internal/model"
	"github.com/pavelanni/wikiquiz/internal/wiki"
)

// ArticleFetcher downloads and parses an article.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (*wiki.Article, error)
}

// QuizGenerator produces quiz content from article text.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, articleText string) (*llm.Generated, error)
}

// QuizStore persists quizzes.
type QuizStore interface {
	GetQuizByURL(url string) (*model.QuizPayload, error)
	SaveQuiz(p *model.QuizPayload) (int64, error)
	GetQuiz(id int64) (*model.QuizPayload, error)
}

// FetchError wraps a failure to download or parse the article.
type FetchError struct{ Err error }

func (e *FetchError) Error() string { return "scraping error: " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// GenerateError wraps a failure of the LLM generation step.
type GenerateError struct{ Err error }

func (e *GenerateError) Error() string { return "LLM generation error: " + e.Err.Error() }
func (e *GenerateError) Unwrap() error { return e.Err }

// Service generates and caches quizzes.
type Service struct {
	fetcher   ArticleFetcher
	generator QuizGenerator
	store     QuizStore
}

// NewService creates a quiz service.
func NewService(f ArticleFetcher, g QuizGenerator, s QuizStore) *Service {
	return &Service{fetcher: f, generator: g, store: s}
}

// Generate returns the quiz for rawURL, generating and storing it the first
// time a URL is seen. Invalid URLs fail with wiki.ErrNotWikipedia.
func (s *Service) Generate(ctx context.Context, rawURL string) (*model.QuizPayload, error) {
	url, err := wiki.ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	cached, err := s.store.GetQuizByURL(url)
	if err != nil {
		return nil, fmt.Errorf("look up cached quiz: %w", err)
	}
	if cached != nil {
		slog.Info("serving cached quiz", "url", url, "quiz_id", cached.ID)
		return cached, nil
	}

	p, err := s.Build(ctx, url)
	if err != nil {
		return nil, err
	}

	id, err := s.store.SaveQuiz(p)
	if err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}
	slog.Info("generated quiz", "url", url, "quiz_id", id, "questions", len(p.Quiz))
	return s.store.GetQuiz(id)
}

// Build fetches and generates a payload for url without storing it.
func (s *Service) Build(ctx context.Context, url string) (*model.QuizPayload, error) {
	art, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	gen, err := s.generator.GenerateQuiz(ctx, art.Text)
	if err != nil {
		return nil, &GenerateError{Err: err}
	}
	if len(gen.Quiz) == 0 {
		return nil, &GenerateError{Err: fmt.Errorf("model returned no questions")}
	}

	summary := gen.Summary
	if summary == "" {
		summary = art.Summary
	}
	p := &model.QuizPayload{
		URL:           url,
		Title:         art.Title,
		Summary:       summary,
		KeyEntities:   gen.KeyEntities,
		Sections:      art.Sections,
		Quiz:          gen.Quiz,
		RelatedTopics: gen.RelatedTopics,
	}
	// A payload that cannot be rendered is never stored.
	if err := p.Validate(); err != nil {
		return nil, &GenerateError{Err: err}
	}
	return p, nil
}
