package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/wikiquiz/internal/handler/views"
	appI18n "github.com/pavelanni/wikiquiz/internal/i18n"
	"github.com/pavelanni/wikiquiz/internal/store"
)

func (h *Handler) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, r, "")
}

func (h *Handler) renderAdmin(w http.ResponseWriter, r *http.Request, msg string) {
	items, err := h.store.ListHistory(0)
	if err != nil {
		slog.Error("failed to list quizzes", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, http.StatusOK, views.AdminPage(views.AdminData{Items: items, Message: msg}))
}

func (h *Handler) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "quizID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid quiz ID", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteQuiz(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, appI18n.T(r.Context(), "NotFound"), http.StatusNotFound)
			return
		}
		slog.Error("failed to delete quiz", "quiz_id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("quiz deleted", "quiz_id", id)
	h.renderAdmin(w, r, appI18n.T(r.Context(), "QuizDeleted"))
}

func (h *Handler) handleClearQuizzes(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearQuizzes(); err != nil {
		slog.Error("failed to clear quizzes", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("all quizzes deleted")
	h.renderAdmin(w, r, appI18n.T(r.Context(), "QuizzesCleared"))
}
