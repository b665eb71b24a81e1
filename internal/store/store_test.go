package store

import (
	"errors"
	"testing"
	"time"

	"github.com/pavelanni/wikiquiz/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPayload(url string) *model.QuizPayload {
	return &model.QuizPayload{
		URL:     url,
		Title:   "Alan Turing",
		Summary: "English mathematician.",
		KeyEntities: model.Entities{
			{Type: "people", Names: []string{"Alan Turing", "Alonzo Church"}},
			{Type: "organizations", Names: []string{"Bletchley Park"}},
			{Type: "locations", Names: nil},
		},
		Sections: []string{"Early life", "Career"},
		Quiz: []model.Question{
			{
				Question:    "Where did Turing work during the war?",
				Options:     []string{"Bletchley Park", "Cambridge", "Princeton", "Manchester"},
				Answer:      "Bletchley Park",
				Difficulty:  model.DifficultyEasy,
				Explanation: "He worked at Bletchley Park.",
			},
			{
				Question:    "Who supervised his PhD?",
				Options:     []string{"Alonzo Church", "John von Neumann"},
				Answer:      "Alonzo Church",
				Difficulty:  model.DifficultyHard,
				Explanation: "Church supervised him at Princeton.",
			},
		},
		RelatedTopics: []string{"Enigma machine", "Turing test"},
	}
}

func saveTestQuiz(t *testing.T, s *Store, url string) int64 {
	t.Helper()
	id, err := s.SaveQuiz(testPayload(url))
	if err != nil {
		t.Fatalf("SaveQuiz: %v", err)
	}
	return id
}

func TestQuizRoundTrip(t *testing.T) {
	s := newTestStore(t)

	count, err := s.QuizCount()
	if err != nil {
		t.Fatalf("QuizCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 quizzes, got %d", count)
	}

	id := saveTestQuiz(t, s, "https://en.wikipedia.org/wiki/Alan_Turing")
	got, err := s.GetQuiz(id)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.ID != id || got.Title != "Alan Turing" {
		t.Errorf("unexpected quiz header: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	if len(got.Quiz) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got.Quiz))
	}
	if got.Quiz[1].Question != "Who supervised his PhD?" {
		t.Errorf("questions out of order: %q", got.Quiz[1].Question)
	}
	if got.Quiz[0].Options[3] != "Manchester" {
		t.Errorf("options not preserved: %v", got.Quiz[0].Options)
	}
	if len(got.KeyEntities) != 3 || got.KeyEntities[0].Type != "people" || got.KeyEntities[2].Type != "locations" {
		t.Errorf("entity order not preserved: %+v", got.KeyEntities)
	}
	if len(got.RelatedTopics) != 2 || len(got.Sections) != 2 {
		t.Errorf("topics/sections lost: %v %v", got.RelatedTopics, got.Sections)
	}

	_, err = s.GetQuiz(9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveQuizEmptyOptionalFields(t *testing.T) {
	s := newTestStore(t)
	p := testPayload("https://en.wikipedia.org/wiki/Empty")
	p.KeyEntities = nil
	p.RelatedTopics = nil
	p.Sections = nil

	id, err := s.SaveQuiz(p)
	if err != nil {
		t.Fatalf("SaveQuiz: %v", err)
	}
	got, err := s.GetQuiz(id)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if len(got.KeyEntities) != 0 || len(got.RelatedTopics) != 0 {
		t.Errorf("expected empty optional fields, got %+v", got)
	}
}

func TestGetQuizByURL(t *testing.T) {
	s := newTestStore(t)
	url := "https://en.wikipedia.org/wiki/Alan_Turing"

	got, err := s.GetQuizByURL(url)
	if err != nil {
		t.Fatalf("GetQuizByURL: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown URL, got %+v", got)
	}

	saveTestQuiz(t, s, url)
	second := saveTestQuiz(t, s, url)
	got, err = s.GetQuizByURL(url)
	if err != nil {
		t.Fatalf("GetQuizByURL: %v", err)
	}
	if got == nil || got.ID != second {
		t.Errorf("expected newest quiz %d, got %+v", second, got)
	}
}

func TestListHistory(t *testing.T) {
	s := newTestStore(t)
	old := testPayload("https://en.wikipedia.org/wiki/Old")
	old.CreatedAt = time.Now().Add(-time.Hour).UTC()
	if _, err := s.SaveQuiz(old); err != nil {
		t.Fatalf("SaveQuiz: %v", err)
	}
	newID := saveTestQuiz(t, s, "https://en.wikipedia.org/wiki/New")

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"all", 0, 2},
		{"limited", 1, 1},
		{"limit above count", 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := s.ListHistory(tt.limit)
			if err != nil {
				t.Fatalf("ListHistory: %v", err)
			}
			if len(items) != tt.want {
				t.Fatalf("expected %d items, got %d", tt.want, len(items))
			}
			if items[0].ID != newID {
				t.Errorf("expected newest first, got %d", items[0].ID)
			}
			if items[0].QuestionCount != 2 {
				t.Errorf("expected 2 questions, got %d", items[0].QuestionCount)
			}
		})
	}
}

func TestAttemptSelections(t *testing.T) {
	s := newTestStore(t)
	quizID := saveTestQuiz(t, s, "https://en.wikipedia.org/wiki/Alan_Turing")

	attemptID, err := s.CreateAttempt(quizID)
	if err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}
	other, err := s.CreateAttempt(quizID)
	if err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}
	if attemptID == other {
		t.Fatal("attempt IDs should be unique")
	}

	ok, err := s.RecordSelection(attemptID, 0, "Cambridge")
	if err != nil || !ok {
		t.Fatalf("first RecordSelection = %v, %v", ok, err)
	}
	ok, err = s.RecordSelection(attemptID, 0, "Bletchley Park")
	if err != nil {
		t.Fatalf("second RecordSelection: %v", err)
	}
	if ok {
		t.Error("second selection on the same question should not be recorded")
	}

	a, err := s.GetAttempt(attemptID)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if a.QuizID != quizID {
		t.Errorf("expected quiz %d, got %d", quizID, a.QuizID)
	}
	if a.Selections[0] != "Cambridge" {
		t.Errorf("expected first selection kept, got %q", a.Selections[0])
	}

	fresh, err := s.GetAttempt(other)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if len(fresh.Selections) != 0 {
		t.Errorf("new attempt should start empty, got %v", fresh.Selections)
	}

	_, err = s.GetAttempt("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAndClearQuizzes(t *testing.T) {
	s := newTestStore(t)
	a := saveTestQuiz(t, s, "https://en.wikipedia.org/wiki/A")
	saveTestQuiz(t, s, "https://en.wikipedia.org/wiki/B")
	attemptID, _ := s.CreateAttempt(a)
	_, _ = s.RecordSelection(attemptID, 1, "Alonzo Church")

	if err := s.DeleteQuiz(a); err != nil {
		t.Fatalf("DeleteQuiz: %v", err)
	}
	if _, err := s.GetQuiz(a); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted quiz still readable: %v", err)
	}
	if _, err := s.GetAttempt(attemptID); !errors.Is(err, ErrNotFound) {
		t.Errorf("attempt of deleted quiz still readable: %v", err)
	}
	if err := s.DeleteQuiz(a); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}

	if err := s.ClearQuizzes(); err != nil {
		t.Fatalf("ClearQuizzes: %v", err)
	}
	count, _ := s.QuizCount()
	if count != 0 {
		t.Errorf("expected 0 quizzes after clear, got %d", count)
	}
}

func TestUsersAndAuthSessions(t *testing.T) {
	s := newTestStore(t)

	n, err := s.UserCount()
	if err != nil || n != 0 {
		t.Fatalf("UserCount = %d, %v", n, err)
	}

	id, err := s.CreateUser(model.User{Username: "admin", PasswordHash: "hash", Active: true})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	u, err := s.GetUserByUsername("admin")
	if err != nil || u == nil || u.ID != id || !u.Active {
		t.Fatalf("GetUserByUsername = %+v, %v", u, err)
	}
	missing, err := s.GetUserByID(id + 1)
	if err != nil || missing != nil {
		t.Errorf("expected nil user, got %+v, %v", missing, err)
	}

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	sess, err := s.GetAuthSession(token)
	if err != nil || sess == nil || sess.UserID != id {
		t.Fatalf("GetAuthSession = %+v, %v", sess, err)
	}
	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil || sess != nil {
		t.Errorf("expected nil session after delete, got %+v, %v", sess, err)
	}
}

func TestExportAndImportHashes(t *testing.T) {
	s := newTestStore(t)
	first := saveTestQuiz(t, s, "https://en.wikipedia.org/wiki/A")
	saveTestQuiz(t, s, "https://en.wikipedia.org/wiki/B")

	quizzes, err := s.ExportQuizzes()
	if err != nil {
		t.Fatalf("ExportQuizzes: %v", err)
	}
	if len(quizzes) != 2 || quizzes[0].ID != first {
		t.Fatalf("unexpected export: %d quizzes", len(quizzes))
	}
	if len(quizzes[1].Quiz) != 2 {
		t.Errorf("exported quiz lost questions")
	}

	hash, err := s.GetImportedFileHash("quizzes.json")
	if err != nil || hash != "" {
		t.Fatalf("GetImportedFileHash = %q, %v", hash, err)
	}
	if err := s.SetImportedFileHash("quizzes.json", "abc"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	if err := s.SetImportedFileHash("quizzes.json", "def"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash("quizzes.json")
	if hash != "def" {
		t.Errorf("expected updated hash, got %q", hash)
	}
}
