package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.txt
var Templates embed.FS

var articleTagRegex = regexp.MustCompile(`(?i)</?\s*(article-text|system-instructions)\b[^>]*>`)

const maxArticleRunes = 15000

// PromptVariant selects the difficulty mix requested from the model.
type PromptVariant string

const (
	// PromptEasy favours recall questions.
	PromptEasy PromptVariant = "easy"
	// PromptBalanced is the default mix.
	PromptBalanced PromptVariant = "balanced"
	// PromptChallenging favours analysis questions.
	PromptChallenging PromptVariant = "challenging"
)

var difficultyMix = map[PromptVariant]string{
	PromptEasy: "- Mostly \"easy\" factual recall questions.\n" +
		"- At most one \"medium\" question and no \"hard\" questions.",
	PromptBalanced: "- Roughly a third each of \"easy\", \"medium\", and \"hard\" questions.\n" +
		"- Order the questions from easiest to hardest.",
	PromptChallenging: "- Mostly \"medium\" and \"hard\" questions that require connecting facts from different parts of the text.\n" +
		"- At most one \"easy\" question.",
}

var (
	loadOnce         sync.Once
	loadErr          error
	generateTemplate *template.Template
)

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	_, ok := difficultyMix[PromptVariant(v)]
	return ok
}

// GenerateData holds template data for the quiz generation prompt.
type GenerateData struct {
	Text          string
	MinQuestions  int
	MaxQuestions  int
	RelatedTopics int
	DifficultyMix string
}

// Load parses the prompt templates from fsys.
// It uses sync.Once to ensure templates are loaded only once.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		const file = "templates/generate.txt"
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			loadErr = fmt.Errorf("read prompt file %s: %w", file, err)
			return
		}
		generateTemplate, err = template.New("generate").Parse(string(content))
		if err != nil {
			loadErr = fmt.Errorf("parse prompt template %s: %w", file, err)
		}
	})
	return loadErr
}

// BuildGeneratePrompt renders the generation prompt for the article text.
func BuildGeneratePrompt(variant PromptVariant, text string, minQuestions, maxQuestions int) (string, error) {
	if generateTemplate == nil {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("templates not initialized: call Load first")
	}
	mix, ok := difficultyMix[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}
	if minQuestions < 1 {
		minQuestions = 1
	}
	if maxQuestions < minQuestions {
		maxQuestions = minQuestions
	}

	data := GenerateData{
		Text:          sanitizeArticle(text),
		MinQuestions:  minQuestions,
		MaxQuestions:  maxQuestions,
		RelatedTopics: 5,
		DifficultyMix: mix,
	}

	var buf bytes.Buffer
	if err := generateTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeArticle(text string) string {
	text = articleTagRegex.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return "[No article text]"
	}
	if utf8.RuneCountInString(text) > maxArticleRunes {
		text = string([]rune(text)[:maxArticleRunes])
	}
	return text
}
