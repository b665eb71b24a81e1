package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/wikiquiz/internal/model"
	"github.com/pavelanni/wikiquiz/internal/quiz"
	"github.com/pavelanni/wikiquiz/internal/store"
	"github.com/pavelanni/wikiquiz/internal/wiki"
)

type generateRequest struct {
	URL string `json:"url"`
}

type apiError struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}

func writeAPIError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, apiError{Detail: detail})
}

// jsonOnly rejects request bodies that a cross-site form could send without
// a CORS preflight, and requests whose Origin names another host.
func jsonOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			writeAPIError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" {
			u, err := url.Parse(origin)
			if err != nil || u.Host != r.Host {
				slog.Warn("cross-origin API request rejected", "origin", origin, "host", r.Host)
				writeAPIError(w, http.StatusForbidden, "cross-origin request rejected")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) apiGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.URL == "" {
		writeAPIError(w, http.StatusBadRequest, "url is required")
		return
	}

	p, err := h.quiz.Generate(r.Context(), req.URL)
	if err != nil {
		var (
			fetchErr *quiz.FetchError
			genErr   *quiz.GenerateError
		)
		switch {
		case errors.Is(err, wiki.ErrNotWikipedia):
			writeAPIError(w, http.StatusBadRequest, "Invalid Wikipedia URL")
		case errors.As(err, &fetchErr), errors.As(err, &genErr):
			slog.Error("quiz generation failed", "url", req.URL, "error", err)
			writeAPIError(w, http.StatusBadGateway, err.Error())
		default:
			slog.Error("quiz generation failed", "url", req.URL, "error", err)
			writeAPIError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) apiHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeAPIError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	items, err := h.store.ListHistory(limit)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []model.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) apiQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "quizID"), 10, 64)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid quiz ID")
		return
	}
	p, err := h.store.GetQuiz(id)
	if errors.Is(err, store.ErrNotFound) {
		writeAPIError(w, http.StatusNotFound, "Quiz not found")
		return
	}
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}
