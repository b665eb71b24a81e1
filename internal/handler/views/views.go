// Package views renders the HTML pages as templ components. Edit the .templ
// sources and regenerate the _templ.go files with `go generate ./cmd/...`.
package views

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	appI18n "github.com/pavelanni/wikiquiz/internal/i18n"
	"github.com/pavelanni/wikiquiz/internal/model"
)

//go:embed static
var staticFS embed.FS

// Static serves the embedded stylesheet and scripts.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}

// IndexData is the generate form page.
type IndexData struct {
	URL    string
	Error  string
	Recent []model.HistoryItem
}

// Score is the running tally of an attempt.
type Score struct {
	Answered int
	Correct  int
	Total    int
}

// AdminData is the quiz management page.
type AdminData struct {
	Items   []model.HistoryItem
	Message string
}

func t(ctx context.Context, id string) string {
	return appI18n.T(ctx, id)
}

// path prefixes an application path with the mount point.
func path(ctx context.Context, p string) string {
	return model.BasePathFromContext(ctx) + p
}

func pathf(ctx context.Context, format string, args ...any) string {
	return path(ctx, fmt.Sprintf(format, args...))
}

func scoreLine(ctx context.Context, s Score) string {
	return appI18n.Td(ctx, "Score", map[string]any{"Correct": s.Correct, "Answered": s.Answered})
}

func questionCount(ctx context.Context, n int) string {
	return appI18n.Tp(ctx, "QuestionsCount", n)
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format("2006-01-02 15:04")
}
