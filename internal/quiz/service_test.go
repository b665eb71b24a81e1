package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pavelanni/wikiquiz/internal/llm"
	"github.com/pavelanni/wikiquiz/internal/model"
	"github.com/pavelanni/wikiquiz/internal/store"
	"github.com/pavelanni/wikiquiz/internal/wiki"
)

const articleURL = "https://en.wikipedia.org/wiki/Alan_Turing"

type fakeFetcher struct {
	calls int
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*wiki.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &wiki.Article{
		URL:      url,
		Title:    "Alan Turing",
		Summary:  "Scraped summary.",
		Text:     "Alan Turing was an English mathematician.",
		Sections: []string{"Early life"},
	}, nil
}

type fakeGenerator struct {
	calls int
	gen   *llm.Generated
	err   error
}

func (g *fakeGenerator) GenerateQuiz(context.Context, string) (*llm.Generated, error) {
	g.calls++
	return g.gen, g.err
}

func generated() *llm.Generated {
	return &llm.Generated{
		Summary:     "Generated summary.",
		KeyEntities: model.Entities{{Type: "people", Names: []string{"Alan Turing"}}},
		Quiz: []model.Question{{
			Question:    "Nationality?",
			Options:     []string{"English", "French"},
			Answer:      "English",
			Difficulty:  model.DifficultyEasy,
			Explanation: "He was English.",
		}},
		RelatedTopics: []string{"Enigma"},
	}
}

func withExtraQuestion(q model.Question) *llm.Generated {
	g := generated()
	g.Quiz = append(g.Quiz, q)
	return g
}

func newTestService(t *testing.T, f *fakeFetcher, g *fakeGenerator) (*Service, *store.Store) {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewService(f, g, s), s
}

func TestGenerateStoresAndCaches(t *testing.T) {
	f := &fakeFetcher{}
	g := &fakeGenerator{gen: generated()}
	svc, st := newTestService(t, f, g)

	p, err := svc.Generate(context.Background(), articleURL)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected stored quiz ID")
	}
	if p.Title != "Alan Turing" || p.Summary != "Generated summary." {
		t.Errorf("unexpected payload header: %+v", p)
	}
	if len(p.Sections) != 1 || len(p.Quiz) != 1 {
		t.Errorf("sections/questions lost: %+v", p)
	}

	again, err := svc.Generate(context.Background(), "  "+articleURL+" ")
	if err != nil {
		t.Fatalf("Generate cached: %v", err)
	}
	if again.ID != p.ID {
		t.Errorf("expected cached quiz %d, got %d", p.ID, again.ID)
	}
	if f.calls != 1 || g.calls != 1 {
		t.Errorf("cache miss on second call: fetch=%d generate=%d", f.calls, g.calls)
	}
	if n, _ := st.QuizCount(); n != 1 {
		t.Errorf("expected 1 stored quiz, got %d", n)
	}
}

func TestGenerateFallsBackToScrapedSummary(t *testing.T) {
	gen := generated()
	gen.Summary = ""
	svc, _ := newTestService(t, &fakeFetcher{}, &fakeGenerator{gen: gen})

	p, err := svc.Generate(context.Background(), articleURL)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.Summary != "Scraped summary." {
		t.Errorf("summary = %q", p.Summary)
	}
}

func TestGenerateErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		url     string
		fetcher *fakeFetcher
		gen     *fakeGenerator
		check   func(error) bool
	}{
		{
			name:    "invalid url",
			url:     "https://example.com/x",
			fetcher: &fakeFetcher{},
			gen:     &fakeGenerator{gen: generated()},
			check:   func(err error) bool { return errors.Is(err, wiki.ErrNotWikipedia) },
		},
		{
			name:    "fetch failure",
			url:     articleURL,
			fetcher: &fakeFetcher{err: boom},
			gen:     &fakeGenerator{gen: generated()},
			check: func(err error) bool {
				var fe *FetchError
				return errors.As(err, &fe) && errors.Is(err, boom)
			},
		},
		{
			name:    "generation failure",
			url:     articleURL,
			fetcher: &fakeFetcher{},
			gen:     &fakeGenerator{err: boom},
			check: func(err error) bool {
				var ge *GenerateError
				return errors.As(err, &ge)
			},
		},
		{
			name:    "no questions",
			url:     articleURL,
			fetcher: &fakeFetcher{},
			gen:     &fakeGenerator{gen: &llm.Generated{Summary: "s"}},
			check: func(err error) bool {
				var ge *GenerateError
				return errors.As(err, &ge)
			},
		},
		{
			name:    "malformed question",
			url:     articleURL,
			fetcher: &fakeFetcher{},
			gen:     &fakeGenerator{gen: withExtraQuestion(model.Question{Options: []string{"only"}})},
			check: func(err error) bool {
				var ge *GenerateError
				return errors.As(err, &ge) && strings.Contains(err.Error(), "question 2 has no text")
			},
		},
		{
			name:    "single option",
			url:     articleURL,
			fetcher: &fakeFetcher{},
			gen:     &fakeGenerator{gen: withExtraQuestion(model.Question{Question: "Pick", Options: []string{"only"}, Answer: "only"})},
			check: func(err error) bool {
				var ge *GenerateError
				return errors.As(err, &ge) && strings.Contains(err.Error(), "question 2 has 1 options")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st := newTestService(t, tt.fetcher, tt.gen)
			_, err := svc.Generate(context.Background(), tt.url)
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if n, _ := st.QuizCount(); n != 0 {
				t.Errorf("nothing should be stored on failure, got %d", n)
			}
		})
	}
}
