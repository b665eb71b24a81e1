package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pavelanni/wikiquiz/internal/model"
)

const generatedJSON = `{
  "summary": "Turing was a mathematician.",
  "key_entities": {"people": ["Alan Turing"], "organizations": [], "locations": ["London"]},
  "quiz": [
    {"question": "Where was he born?", "options": ["London", "Paris", "Rome", "Oslo"], "answer": "B", "difficulty": "easy", "explanation": "London."},
    {"question": "Field?", "options": ["Maths", "Art"], "answer": "Maths", "difficulty": "medium", "explanation": "Maths."}
  ],
  "related_topics": ["Enigma"]
}`

// fakeOpenAI serves a chat completion whose content is the given string.
func fakeOpenAI(t *testing.T, content string, gotPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/models"):
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"test-model","object":"model"}]}`))
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			var req struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if gotPrompt != nil && len(req.Messages) > 0 {
				*gotPrompt = req.Messages[0].Content
			}
			choices := []map[string]any{}
			if content != "" {
				choices = append(choices, map[string]any{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "cmpl-1",
				"object":  "chat.completion",
				"model":   "test-model",
				"choices": choices,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL+"/v1", "key", "test-model", "balanced", 5, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestGenerateQuiz(t *testing.T) {
	var prompt string
	c := newTestClient(t, fakeOpenAI(t, generatedJSON, &prompt))

	gen, err := c.GenerateQuiz(context.Background(), "Alan Turing was born in London.")
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if !strings.Contains(prompt, "Alan Turing was born in London.") {
		t.Error("article text not sent in prompt")
	}
	if gen.Summary != "Turing was a mathematician." {
		t.Errorf("summary = %q", gen.Summary)
	}
	if len(gen.Quiz) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(gen.Quiz))
	}
	if gen.Quiz[0].Answer != "Paris" {
		t.Errorf("letter answer not repaired: %q", gen.Quiz[0].Answer)
	}
	if gen.KeyEntities[2].Type != "locations" {
		t.Errorf("entity order lost: %+v", gen.KeyEntities)
	}
}

func TestGenerateQuizCodeFence(t *testing.T) {
	c := newTestClient(t, fakeOpenAI(t, "```json\n"+generatedJSON+"\n```", nil))
	gen, err := c.GenerateQuiz(context.Background(), "text")
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(gen.RelatedTopics) != 1 {
		t.Errorf("related topics = %v", gen.RelatedTopics)
	}
}

func TestGenerateQuizErrors(t *testing.T) {
	t.Run("no choices", func(t *testing.T) {
		c := newTestClient(t, fakeOpenAI(t, "", nil))
		_, err := c.GenerateQuiz(context.Background(), "text")
		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("expected ErrEmptyResponse, got %v", err)
		}
	})
	t.Run("invalid JSON", func(t *testing.T) {
		c := newTestClient(t, fakeOpenAI(t, "not json", nil))
		if _, err := c.GenerateQuiz(context.Background(), "text"); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestPing(t *testing.T) {
	c := newTestClient(t, fakeOpenAI(t, generatedJSON, nil))
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewRejectsInvalidVariant(t *testing.T) {
	if _, err := New("", "key", "m", "standard", 5, 10); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRepairAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{"exact match kept", "Rome", "Rome"},
		{"letter", "C", "Berlin"},
		{"option prefix", "Option A", "Paris"},
		{"letter out of range", "D", "D"},
		{"unknown answer kept", "Madrid", "Madrid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := []model.Question{{Options: []string{"Paris", "Rome", "Berlin"}, Answer: tt.answer}}
			repairAnswers(qs)
			if qs[0].Answer != tt.want {
				t.Errorf("answer = %q, want %q", qs[0].Answer, tt.want)
			}
		})
	}
}
