package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/wikiquiz/internal/handler/views"
	appI18n "github.com/pavelanni/wikiquiz/internal/i18n"
	"github.com/pavelanni/wikiquiz/internal/model"
	"github.com/pavelanni/wikiquiz/internal/quiz"
	"github.com/pavelanni/wikiquiz/internal/quizview"
	"github.com/pavelanni/wikiquiz/internal/reveal"
	"github.com/pavelanni/wikiquiz/internal/store"
	"github.com/pavelanni/wikiquiz/internal/wiki"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	quiz   *quiz.Service
	config model.AppConfig
}

// New creates a new Handler.
func New(s *store.Store, q *quiz.Service, cfg model.AppConfig) (*Handler, error) {
	if s == nil || q == nil {
		return nil, errors.New("handler: store and quiz service are required")
	}
	if cfg.HistoryOnHome <= 0 {
		cfg.HistoryOnHome = 5
	}
	return &Handler{store: s, quiz: q, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Handle("/static/*", http.StripPrefix(h.path("/static/"), views.Static()))

	r.Route("/api", func(r chi.Router) {
		r.With(jsonOnly).Post("/generate_quiz", h.apiGenerateQuiz)
		r.Get("/history", h.apiHistory)
		r.Get("/quiz/{quizID}", h.apiQuiz)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Use(h.optionalUser)

		r.Get("/", h.handleIndex)
		r.Post("/generate", h.handleGenerate)
		r.Get("/history", h.handleHistory)
		r.Post("/quiz/{quizID}/attempt", h.handleNewAttempt)
		r.Get("/attempt/{attemptID}", h.handleAttempt)
		r.Post("/attempt/{attemptID}/select/{index}", h.handleSelect)

		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/admin", h.handleAdminPage)
			r.Post("/admin/quiz/{quizID}/delete", h.handleDeleteQuiz)
			r.Post("/admin/clear", h.handleClearQuizzes)
		})
	})
}

// BasePathMiddleware puts the configured URL prefix into the request context
// for the views.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	recent, err := h.store.ListHistory(h.config.HistoryOnHome)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, http.StatusOK, views.IndexPage(views.IndexData{Recent: recent}))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	rawURL := r.FormValue("url")
	if rawURL == "" {
		h.renderGenerateError(w, r, rawURL, http.StatusBadRequest, appI18n.T(r.Context(), "ErrorURLRequired"))
		return
	}

	p, err := h.quiz.Generate(r.Context(), rawURL)
	if err != nil {
		status, msg := generateErrorMessage(r, err)
		slog.Error("quiz generation failed", "url", rawURL, "status", status, "error", err)
		h.renderGenerateError(w, r, rawURL, status, msg)
		return
	}

	attemptID, err := h.store.CreateAttempt(p.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.path("/attempt/"+attemptID), http.StatusSeeOther)
}

func (h *Handler) renderGenerateError(w http.ResponseWriter, r *http.Request, rawURL string, status int, msg string) {
	recent, err := h.store.ListHistory(h.config.HistoryOnHome)
	if err != nil {
		slog.Error("failed to list history", "error", err)
	}
	render(w, r, status, views.IndexPage(views.IndexData{URL: rawURL, Error: msg, Recent: recent}))
}

// generateErrorMessage maps a generation failure to a status code and the
// message shown to the user.
func generateErrorMessage(r *http.Request, err error) (int, string) {
	var (
		fetchErr *quiz.FetchError
		genErr   *quiz.GenerateError
	)
	switch {
	case errors.Is(err, wiki.ErrNotWikipedia):
		return http.StatusBadRequest, appI18n.T(r.Context(), "ErrorInvalidURL")
	case errors.As(err, &fetchErr), errors.As(err, &genErr):
		return http.StatusBadGateway, appI18n.Td(r.Context(), "ErrorServer", map[string]any{
			"Status": http.StatusBadGateway,
			"Detail": err.Error(),
		})
	default:
		return http.StatusInternalServerError, appI18n.T(r.Context(), "ErrorGeneric")
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListHistory(0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, http.StatusOK, views.HistoryPage(items))
}

func (h *Handler) handleNewAttempt(w http.ResponseWriter, r *http.Request) {
	quizID, err := strconv.ParseInt(chi.URLParam(r, "quizID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid quiz ID", http.StatusBadRequest)
		return
	}
	if _, err := h.store.GetQuiz(quizID); err != nil {
		h.storeError(w, r, err)
		return
	}

	attemptID, err := h.store.CreateAttempt(quizID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.path("/attempt/"+attemptID), http.StatusSeeOther)
}

// loadBoard rebuilds the reveal board of an attempt from its stored
// selections.
func (h *Handler) loadBoard(attemptID string) (*reveal.Board, error) {
	a, err := h.store.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	p, err := h.store.GetQuiz(a.QuizID)
	if err != nil {
		return nil, err
	}
	b := reveal.NewBoard(p)
	b.Replay(a.Selections)
	return b, nil
}

func (h *Handler) handleAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptID")
	b, err := h.loadBoard(attemptID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, views.QuizPage(quizview.Build(attemptID, b)))
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptID")
	b, err := h.loadBoard(attemptID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= b.Len() {
		http.Error(w, "invalid question index", http.StatusBadRequest)
		return
	}

	option := r.FormValue("option")
	if b.Select(idx, option) {
		recorded, err := h.store.RecordSelection(attemptID, idx, option)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !recorded {
			// A concurrent request revealed this question first.
			if b, err = h.loadBoard(attemptID); err != nil {
				h.storeError(w, r, err)
				return
			}
		}
	}

	if r.Header.Get("HX-Request") == "true" {
		answered, correct := b.Score()
		render(w, r, http.StatusOK, views.QuestionFragment(
			quizview.BuildQuestion(attemptID, b, idx),
			views.Score{Answered: answered, Correct: correct, Total: b.Len()},
		))
		return
	}
	http.Redirect(w, r, fmt.Sprintf("%s#q-%d", h.path("/attempt/"+attemptID), idx), http.StatusSeeOther)
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, appI18n.T(r.Context(), "NotFound"), http.StatusNotFound)
		return
	}
	slog.Error("store error", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
