package quizview

import (
	"testing"

	"github.com/pavelanni/wikiquiz/internal/model"
	"github.com/pavelanni/wikiquiz/internal/reveal"
)

func samplePayload() *model.QuizPayload {
	return &model.QuizPayload{
		ID:      7,
		URL:     "https://en.wikipedia.org/wiki/Europe",
		Title:   "Europe",
		Summary: "A continent.",
		KeyEntities: model.Entities{
			{Type: "people", Names: []string{"Charlemagne"}},
			{Type: "locations", Names: []string{"Paris", "Rome"}},
		},
		Quiz: []model.Question{
			{
				Question:    "Capital of France?",
				Options:     []string{"Paris", "Rome", "Berlin"},
				Answer:      "Paris",
				Difficulty:  model.DifficultyEasy,
				Explanation: "Paris is the capital of France.",
			},
			{
				Question:    "Capital of Spain?",
				Options:     []string{"Paris", "Rome"},
				Answer:      "Madrid",
				Difficulty:  "weird",
				Explanation: "Madrid.",
			},
		},
		RelatedTopics: []string{"European Union"},
	}
}

func TestBuildUnanswered(t *testing.T) {
	page := Build("att-1", reveal.NewBoard(samplePayload()))

	if page.Total != 2 || page.Answered != 0 {
		t.Fatalf("total/answered = %d/%d, want 2/0", page.Total, page.Answered)
	}
	if len(page.Entities) != 3 {
		t.Fatalf("expected 3 entity badges, got %d", len(page.Entities))
	}
	if page.Entities[0].Name != "Charlemagne" || page.Entities[2].Type != "locations" {
		t.Errorf("entities out of order: %+v", page.Entities)
	}

	q := page.Questions[0]
	if q.Number != 1 || q.AttemptID != "att-1" {
		t.Errorf("question number/attempt = %d/%q", q.Number, q.AttemptID)
	}
	if q.Explanation != "" {
		t.Error("explanation should be hidden before reveal")
	}
	for _, o := range q.Options {
		if o.Disabled() || o.Class() != "quiz-option" {
			t.Errorf("option %s: class %q disabled %v", o.Letter, o.Class(), o.Disabled())
		}
	}
	if q.Options[2].Letter != "C" {
		t.Errorf("third letter = %q, want C", q.Options[2].Letter)
	}
}

func TestBuildRevealed(t *testing.T) {
	b := reveal.NewBoard(samplePayload())
	b.Select(0, "Rome")
	page := Build("att-1", b)

	q := page.Questions[0]
	if !q.Revealed || q.Explanation != "Paris is the capital of France." {
		t.Fatalf("revealed=%v explanation=%q", q.Revealed, q.Explanation)
	}
	wantClass := []string{"quiz-option correct", "quiz-option incorrect", "quiz-option disabled"}
	for j, o := range q.Options {
		if o.Class() != wantClass[j] {
			t.Errorf("option %d class = %q, want %q", j, o.Class(), wantClass[j])
		}
		if !o.Disabled() {
			t.Errorf("option %d should be disabled", j)
		}
	}
	if !q.Options[0].IsCorrect() || !q.Options[1].IsIncorrect() {
		t.Error("check/cross markers misplaced")
	}
	if page.Answered != 1 || page.Correct != 0 {
		t.Errorf("answered/correct = %d/%d, want 1/0", page.Answered, page.Correct)
	}
}

func TestRelatedTopicsAbsentWhenEmpty(t *testing.T) {
	tests := []struct {
		name   string
		topics []string
	}{
		{"nil", nil},
		{"empty", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePayload()
			p.RelatedTopics = tt.topics
			page := Build("a", reveal.NewBoard(p))
			if page.RelatedTopics != nil {
				t.Errorf("RelatedTopics = %#v, want nil", page.RelatedTopics)
			}
		})
	}
}

func TestDifficultyClass(t *testing.T) {
	tests := []struct {
		in   model.Difficulty
		want string
	}{
		{model.DifficultyEasy, "badge-easy"},
		{model.DifficultyMedium, "badge-medium"},
		{model.DifficultyHard, "badge-hard"},
		{"", "badge-neutral"},
		{"Expert", "badge-neutral"},
	}
	for _, tt := range tests {
		if got := DifficultyClass(tt.in); got != tt.want {
			t.Errorf("DifficultyClass(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOptionLetter(t *testing.T) {
	if OptionLetter(0) != "A" || OptionLetter(25) != "Z" || OptionLetter(26) != "27" {
		t.Errorf("unexpected letters: %q %q %q", OptionLetter(0), OptionLetter(25), OptionLetter(26))
	}
}
