// Package reveal tracks which option a viewer picked for each question of a
// quiz and derives how every option should be shown.
//
// Each question is either Unanswered or Revealed. The first selection reveals
// the question and is final; later selections on the same question are
// ignored. Option status is never stored, it is computed from the question
// and its state.
package reveal

import "github.com/pavelanni/wikiquiz/internal/model"

// State is the interaction state of one question: Unanswered or Revealed.
type State interface {
	isState()
}

// Unanswered is the initial state; options are selectable.
type Unanswered struct{}

// Revealed is the terminal state. Selected is always one of the question's options.
type Revealed struct {
	Selected string
}

func (Unanswered) isState() {}
func (Revealed) isState()   {}

// OptionStatus is the display classification of a single option.
type OptionStatus int

const (
	Neutral OptionStatus = iota
	Correct
	Incorrect
	Disabled
)

func (s OptionStatus) String() string {
	switch s {
	case Neutral:
		return "neutral"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Status derives the status of option within question q in state st.
// An answer that matches no option leaves every option non-Correct.
func Status(q model.Question, st State, option string) OptionStatus {
	r, ok := st.(Revealed)
	if !ok {
		return Neutral
	}
	switch {
	case option == q.Answer:
		return Correct
	case option == r.Selected:
		return Incorrect
	default:
		return Disabled
	}
}

// Board holds the per-question state for one displayed payload.
// It is not safe for concurrent use.
type Board struct {
	payload *model.QuizPayload
	states  []State
}

// NewBoard returns a board with every question of p Unanswered.
func NewBoard(p *model.QuizPayload) *Board {
	b := &Board{}
	b.Reset(p)
	return b
}

// Reset replaces the displayed payload and clears all question state.
func (b *Board) Reset(p *model.QuizPayload) {
	b.payload = p
	n := 0
	if p != nil {
		n = len(p.Quiz)
	}
	b.states = make([]State, n)
	for i := range b.states {
		b.states[i] = Unanswered{}
	}
}

// Payload returns the payload the board was built for.
func (b *Board) Payload() *model.QuizPayload {
	return b.payload
}

// Len returns the number of questions.
func (b *Board) Len() int {
	return len(b.states)
}

// Select records option as the choice for question i and reveals it.
// It reports whether the state changed: a revealed question, or an option
// that is not among the question's options, leaves the board untouched.
// i must be in [0, Len()).
func (b *Board) Select(i int, option string) bool {
	if _, done := b.states[i].(Revealed); done {
		return false
	}
	if !b.payload.Quiz[i].HasOption(option) {
		return false
	}
	b.states[i] = Revealed{Selected: option}
	return true
}

// State returns the state of question i.
func (b *Board) State(i int) State {
	return b.states[i]
}

// Revealed reports whether question i has been answered. The explanation of
// a question is shown exactly when it is revealed.
func (b *Board) Revealed(i int) bool {
	_, ok := b.states[i].(Revealed)
	return ok
}

// Selected returns the option picked for question i, if any.
func (b *Board) Selected(i int) (string, bool) {
	r, ok := b.states[i].(Revealed)
	return r.Selected, ok
}

// Status returns the status of option within question i.
func (b *Board) Status(i int, option string) OptionStatus {
	return Status(b.payload.Quiz[i], b.states[i], option)
}

// Statuses returns the status of every option of question i, in option order.
func (b *Board) Statuses(i int) []OptionStatus {
	q := b.payload.Quiz[i]
	out := make([]OptionStatus, len(q.Options))
	for j, opt := range q.Options {
		out[j] = Status(q, b.states[i], opt)
	}
	return out
}

// Score counts revealed questions and how many of them were answered correctly.
func (b *Board) Score() (answered, correct int) {
	for i, st := range b.states {
		r, ok := st.(Revealed)
		if !ok {
			continue
		}
		answered++
		if r.Selected == b.payload.Quiz[i].Answer {
			correct++
		}
	}
	return answered, correct
}

// Replay applies previously recorded selections, in question order.
// Indices outside the board are skipped.
func (b *Board) Replay(selections map[int]string) {
	for i := range b.states {
		if opt, ok := selections[i]; ok {
			b.Select(i, opt)
		}
	}
}
