package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	appI18n "github.com/pavelanni/wikiquiz/internal/i18n"
	"github.com/pavelanni/wikiquiz/internal/model"
	"github.com/pavelanni/wikiquiz/internal/quizview"
	"github.com/pavelanni/wikiquiz/internal/reveal"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	ctx := appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer("en"))
	ctx = model.ContextWithBasePath(ctx, "/quiz")
	return model.ContextWithCSRFToken(ctx, "tok123")
}

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func testBoard(related []string) *reveal.Board {
	return reveal.NewBoard(&model.QuizPayload{
		ID:      3,
		URL:     "https://en.wikipedia.org/wiki/France",
		Title:   "France",
		Summary: "France is a country in Western Europe.",
		KeyEntities: model.Entities{
			{Type: "places", Names: []string{"Paris", "Lyon"}},
		},
		Quiz: []model.Question{
			{
				Question:    "What is the capital of France?",
				Options:     []string{"Paris", "Rome", "Berlin"},
				Answer:      "Paris",
				Difficulty:  model.DifficultyEasy,
				Explanation: "Paris has been the capital for centuries.",
			},
			{
				Question:    "Which river flows through Paris?",
				Options:     []string{"Seine", "Rhine"},
				Answer:      "Seine",
				Difficulty:  "tricky",
				Explanation: "The Seine.",
			},
		},
		RelatedTopics: related,
	})
}

func TestQuizPage(t *testing.T) {
	ctx := testCtx(t)
	b := testBoard([]string{"Europe", "French Revolution"})
	b.Select(0, "Rome")

	out := render(t, ctx, QuizPage(quizview.Build("att-1", b)))

	for _, want := range []string{
		"<h1>France</h1>",
		`href="https://en.wikipedia.org/wiki/France"`,
		"Paris (places)",
		"Lyon (places)",
		"1. What is the capital of France?",
		"2. Which river flows through Paris?",
		`class="badge badge-easy"`,
		`class="badge badge-neutral"`,
		`action="/quiz/attempt/att-1/select/0"`,
		`value="tok123"`,
		`class="quiz-option correct" disabled`,
		`class="quiz-option incorrect" disabled`,
		`class="quiz-option disabled" disabled`,
		"Paris has been the capital for centuries.",
		"Explore More Topics",
		"French Revolution",
		"0 of 1 answered correctly",
		`href="/quiz/static/style.css"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("quiz page missing %q", want)
		}
	}
	if strings.Contains(out, "The Seine.") {
		t.Error("explanation of an unanswered question is shown")
	}
}

func TestQuizPageWithoutRelatedTopics(t *testing.T) {
	ctx := testCtx(t)
	for _, related := range [][]string{nil, {}} {
		out := render(t, ctx, QuizPage(quizview.Build("att-1", testBoard(related))))
		if strings.Contains(out, "Explore More Topics") || strings.Contains(out, `class="card related"`) {
			t.Errorf("related topics section rendered for %#v", related)
		}
		if strings.Contains(out, " disabled") {
			t.Error("options disabled before any selection")
		}
	}
}

func TestQuestionFragment(t *testing.T) {
	ctx := testCtx(t)
	b := testBoard(nil)
	b.Select(1, "Seine")

	out := render(t, ctx, QuestionFragment(quizview.BuildQuestion("att-1", b, 1), Score{Answered: 1, Correct: 1, Total: 2}))

	for _, want := range []string{
		`id="q-1"`,
		`hx-target="#q-1"`,
		"The Seine.",
		`hx-swap-oob="true"`,
		"1 of 1 answered correctly",
		"2 questions",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("fragment missing %q", want)
		}
	}
	if strings.Contains(out, "<html") {
		t.Error("fragment includes the page layout")
	}
}

func TestOptionTextIsEscaped(t *testing.T) {
	ctx := testCtx(t)
	b := reveal.NewBoard(&model.QuizPayload{
		Title: "Escaping",
		Quiz: []model.Question{{
			Question: "Pick <b>one</b>",
			Options:  []string{`say "hi"`, "<script>x</script>"},
			Answer:   `say "hi"`,
		}},
	})
	out := render(t, ctx, QuizPage(quizview.Build("a", b)))
	if strings.Contains(out, "<script>x</script>") || strings.Contains(out, "<b>one</b>") {
		t.Error("payload text rendered unescaped")
	}
	if !strings.Contains(out, `value="say &#34;hi&#34;"`) {
		t.Error("option value not attribute-escaped")
	}
}

func TestIndexAndHistoryPages(t *testing.T) {
	ctx := testCtx(t)
	items := []model.HistoryItem{{
		ID:            7,
		URL:           "https://en.wikipedia.org/wiki/Go",
		Title:         "Go",
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		QuestionCount: 5,
	}}

	out := render(t, ctx, IndexPage(IndexData{URL: "https://example.com", Error: "Please enter a valid Wikipedia article URL.", Recent: items}))
	for _, want := range []string{`action="/quiz/generate"`, `value="https://example.com"`, `role="alert"`, "Recent quizzes", `action="/quiz/quiz/7/attempt"`} {
		if !strings.Contains(out, want) {
			t.Errorf("index page missing %q", want)
		}
	}

	out = render(t, ctx, HistoryPage(nil))
	if !strings.Contains(out, "No quizzes generated yet.") {
		t.Error("empty history page missing placeholder")
	}
	out = render(t, ctx, HistoryPage(items))
	if !strings.Contains(out, "<td>5</td>") {
		t.Error("history page missing question count")
	}
}

func TestLayoutShowsAdminLinksForUser(t *testing.T) {
	ctx := testCtx(t)
	out := render(t, ctx, LoginPage(""))
	if strings.Contains(out, `action="/quiz/logout"`) {
		t.Error("logout shown without a user")
	}

	ctx = model.ContextWithUser(ctx, &model.User{ID: 1, Username: "admin", Active: true})
	out = render(t, ctx, AdminPage(AdminData{Message: "Quiz deleted."}))
	for _, want := range []string{`action="/quiz/logout"`, "Quiz deleted.", "No quizzes generated yet."} {
		if !strings.Contains(out, want) {
			t.Errorf("admin page missing %q", want)
		}
	}
}

func TestAdminPageConfirmsDeletes(t *testing.T) {
	ctx := model.ContextWithUser(testCtx(t), &model.User{ID: 1, Username: "admin", Active: true})
	items := []model.HistoryItem{{ID: 4, URL: "https://en.wikipedia.org/wiki/Go", Title: "Go", QuestionCount: 3}}

	out := render(t, ctx, AdminPage(AdminData{Items: items}))
	for _, want := range []string{
		`action="/quiz/admin/quiz/4/delete"`,
		`data-confirm="Delete this quiz?"`,
		`action="/quiz/admin/clear"`,
		`onsubmit="return confirm(this.dataset.confirm)"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("admin page missing %q", want)
		}
	}
}

func TestRenderStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(testCtx(t))
	cancel()

	var buf bytes.Buffer
	if err := IndexPage(IndexData{}).Render(ctx, &buf); err == nil {
		t.Fatal("render with a cancelled context succeeded")
	}
	if buf.Len() != 0 {
		t.Errorf("cancelled render wrote %d bytes", buf.Len())
	}
}
