package reveal

import (
	"reflect"
	"testing"

	"github.com/pavelanni/wikiquiz/internal/model"
)

func testPayload() *model.QuizPayload {
	return &model.QuizPayload{
		Title: "Europe",
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
				Difficulty:  model.DifficultyMedium,
				Explanation: "Madrid is the capital of Spain.",
			},
			{
				Question:   "Pick one",
				Options:    []string{"yes", "no", "yes"},
				Answer:     "yes",
				Difficulty: "impossible",
			},
		},
	}
}

func TestInitialStatusesNeutral(t *testing.T) {
	b := NewBoard(testPayload())
	for i := 0; i < b.Len(); i++ {
		if b.Revealed(i) {
			t.Errorf("question %d revealed before any selection", i)
		}
		if _, ok := b.State(i).(Unanswered); !ok {
			t.Errorf("question %d state = %T, want Unanswered", i, b.State(i))
		}
		for j, st := range b.Statuses(i) {
			if st != Neutral {
				t.Errorf("question %d option %d = %s, want neutral", i, j, st)
			}
		}
	}
}

func TestSelectIncorrectThenIgnored(t *testing.T) {
	b := NewBoard(testPayload())

	if !b.Select(0, "Rome") {
		t.Fatal("first selection should change state")
	}
	want := []OptionStatus{Correct, Incorrect, Disabled}
	if got := b.Statuses(0); !reflect.DeepEqual(got, want) {
		t.Fatalf("statuses after Rome = %v, want %v", got, want)
	}
	if !b.Revealed(0) {
		t.Error("explanation should be visible after selection")
	}

	if b.Select(0, "Berlin") {
		t.Error("second selection should be a no-op")
	}
	if got := b.Statuses(0); !reflect.DeepEqual(got, want) {
		t.Errorf("statuses after Berlin = %v, want %v", got, want)
	}
	if sel, _ := b.Selected(0); sel != "Rome" {
		t.Errorf("selected = %q, want Rome", sel)
	}
}

func TestSelectCorrect(t *testing.T) {
	b := NewBoard(testPayload())
	b.Select(0, "Paris")
	want := []OptionStatus{Correct, Disabled, Disabled}
	if got := b.Statuses(0); !reflect.DeepEqual(got, want) {
		t.Errorf("statuses = %v, want %v", got, want)
	}
}

func TestSelectionIsolatedPerQuestion(t *testing.T) {
	b := NewBoard(testPayload())
	b.Select(0, "Rome")
	if b.Revealed(1) || b.Revealed(2) {
		t.Fatal("selecting question 0 revealed another question")
	}
	for _, st := range b.Statuses(1) {
		if st != Neutral {
			t.Fatalf("question 1 status = %s, want neutral", st)
		}
	}
}

func TestSecondSelectionEquivalentToFirstAlone(t *testing.T) {
	one := NewBoard(testPayload())
	one.Select(0, "Rome")

	two := NewBoard(testPayload())
	two.Select(0, "Rome")
	two.Select(0, "Paris")

	if !reflect.DeepEqual(one.states, two.states) {
		t.Errorf("states differ: %v vs %v", one.states, two.states)
	}
}

func TestAnswerMissingFromOptions(t *testing.T) {
	tests := []struct {
		name   string
		choice string
		want   []OptionStatus
	}{
		{"pick first", "Paris", []OptionStatus{Incorrect, Disabled}},
		{"pick second", "Rome", []OptionStatus{Disabled, Incorrect}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(testPayload())
			b.Select(1, tt.choice)
			got := b.Statuses(1)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("statuses = %v, want %v", got, tt.want)
			}
			for _, st := range got {
				if st == Correct {
					t.Error("no option should be correct when the answer is missing")
				}
			}
			if !b.Revealed(1) {
				t.Error("explanation should still be visible")
			}
		})
	}
}

func TestDuplicateOptionsBothCorrect(t *testing.T) {
	b := NewBoard(testPayload())
	b.Select(2, "no")
	want := []OptionStatus{Correct, Incorrect, Correct}
	if got := b.Statuses(2); !reflect.DeepEqual(got, want) {
		t.Errorf("statuses = %v, want %v", got, want)
	}
}

func TestSelectUnknownOptionIgnored(t *testing.T) {
	b := NewBoard(testPayload())
	if b.Select(0, "Madrid") {
		t.Fatal("selecting a value outside the options should be ignored")
	}
	if b.Revealed(0) {
		t.Error("question should stay unanswered")
	}
}

func TestResetClearsState(t *testing.T) {
	b := NewBoard(testPayload())
	b.Select(0, "Rome")
	b.Select(1, "Paris")

	next := testPayload()
	next.Title = "Other"
	b.Reset(next)

	if b.Payload() != next {
		t.Fatal("payload not replaced")
	}
	for i := 0; i < b.Len(); i++ {
		if b.Revealed(i) {
			t.Errorf("question %d still revealed after reset", i)
		}
	}
	if answered, _ := b.Score(); answered != 0 {
		t.Errorf("answered = %d after reset, want 0", answered)
	}
}

func TestResetToNilPayload(t *testing.T) {
	b := NewBoard(testPayload())
	b.Reset(nil)
	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
}

func TestScore(t *testing.T) {
	b := NewBoard(testPayload())
	b.Select(0, "Paris")
	b.Select(1, "Rome")
	answered, correct := b.Score()
	if answered != 2 || correct != 1 {
		t.Errorf("Score() = (%d, %d), want (2, 1)", answered, correct)
	}
}

func TestReplay(t *testing.T) {
	b := NewBoard(testPayload())
	b.Replay(map[int]string{0: "Berlin", 2: "yes", 7: "ignored"})

	if sel, ok := b.Selected(0); !ok || sel != "Berlin" {
		t.Errorf("question 0 selected = %q, %v", sel, ok)
	}
	if b.Revealed(1) {
		t.Error("question 1 should stay unanswered")
	}
	if b.Status(2, "yes") != Correct {
		t.Errorf("question 2 yes = %s, want correct", b.Status(2, "yes"))
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    OptionStatus
		want string
	}{
		{Neutral, "neutral"},
		{Correct, "correct"},
		{Incorrect, "incorrect"},
		{Disabled, "disabled"},
		{OptionStatus(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.s), got, tt.want)
		}
	}
}
