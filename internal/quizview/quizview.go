// Package quizview turns a payload and its reveal board into the values the
// HTML views render. Everything here is a pure function of its inputs.
package quizview

import (
	"strconv"

	"github.com/pavelanni/wikiquiz/internal/model"
	"github.com/pavelanni/wikiquiz/internal/reveal"
)

// Page is the complete quiz result view.
type Page struct {
	AttemptID     string
	QuizID        int64
	Title         string
	URL           string
	Summary       string
	Entities      []Entity
	Questions     []Question
	RelatedTopics []string // nil when the payload has none
	Total         int
	Answered      int
	Correct       int
}

// Entity is one key-entity badge.
type Entity struct {
	Name string
	Type string
}

// Question is one numbered question card.
type Question struct {
	AttemptID       string
	Index           int
	Number          int
	Text            string
	Difficulty      string
	DifficultyClass string
	Options         []Option
	Revealed        bool
	Explanation     string
}

// Option is one answer button.
type Option struct {
	Letter string
	Text   string
	Status reveal.OptionStatus
}

// Class returns the CSS classes of the option button.
func (o Option) Class() string {
	if o.Status == reveal.Neutral {
		return "quiz-option"
	}
	return "quiz-option " + o.Status.String()
}

// Disabled reports whether the option no longer accepts clicks.
func (o Option) Disabled() bool {
	return o.Status != reveal.Neutral
}

// IsCorrect reports whether the option is highlighted as the right answer.
func (o Option) IsCorrect() bool {
	return o.Status == reveal.Correct
}

// IsIncorrect reports whether the option is the viewer's wrong pick.
func (o Option) IsIncorrect() bool {
	return o.Status == reveal.Incorrect
}

// Build renders the board's payload and state into a Page.
func Build(attemptID string, b *reveal.Board) Page {
	p := b.Payload()
	page := Page{
		AttemptID: attemptID,
		QuizID:    p.ID,
		Title:     p.Title,
		URL:       p.URL,
		Summary:   p.Summary,
		Total:     b.Len(),
	}
	for _, g := range p.KeyEntities {
		for _, name := range g.Names {
			page.Entities = append(page.Entities, Entity{Name: name, Type: g.Type})
		}
	}
	for i := 0; i < b.Len(); i++ {
		page.Questions = append(page.Questions, BuildQuestion(attemptID, b, i))
	}
	if len(p.RelatedTopics) > 0 {
		page.RelatedTopics = p.RelatedTopics
	}
	page.Answered, page.Correct = b.Score()
	return page
}

// BuildQuestion renders question i of the board.
func BuildQuestion(attemptID string, b *reveal.Board, i int) Question {
	q := b.Payload().Quiz[i]
	statuses := b.Statuses(i)
	out := Question{
		AttemptID:       attemptID,
		Index:           i,
		Number:          i + 1,
		Text:            q.Question,
		Difficulty:      string(q.Difficulty),
		DifficultyClass: DifficultyClass(q.Difficulty),
		Revealed:        b.Revealed(i),
		Options:         make([]Option, len(q.Options)),
	}
	if out.Revealed {
		out.Explanation = q.Explanation
	}
	for j, text := range q.Options {
		out.Options[j] = Option{
			Letter: OptionLetter(j),
			Text:   text,
			Status: statuses[j],
		}
	}
	return out
}

// DifficultyClass maps a difficulty to its badge class. Unknown labels get
// the neutral badge.
func DifficultyClass(d model.Difficulty) string {
	if d.Known() {
		return "badge-" + string(d)
	}
	return "badge-neutral"
}

// OptionLetter returns the label of the j-th option: A, B, C... and plain
// numbers past Z.
func OptionLetter(j int) string {
	if j >= 0 && j < 26 {
		return string(rune('A' + j))
	}
	return strconv.Itoa(j + 1)
}
