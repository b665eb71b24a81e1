package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pavelanni/wikiquiz/internal/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a quiz or attempt does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quizzes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		key_entities TEXT NOT NULL DEFAULT '{}',
		sections TEXT NOT NULL DEFAULT '[]',
		related_topics TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_quizzes_url ON quizzes(url);

	CREATE TABLE IF NOT EXISTS quiz_questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quiz_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		question TEXT NOT NULL,
		options TEXT NOT NULL,
		answer TEXT NOT NULL,
		difficulty TEXT NOT NULL DEFAULT '',
		explanation TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (quiz_id) REFERENCES quizzes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		quiz_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (quiz_id) REFERENCES quizzes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS attempt_selections (
		attempt_id TEXT NOT NULL,
		question_index INTEGER NOT NULL,
		selected TEXT NOT NULL,
		selected_at DATETIME NOT NULL,
		PRIMARY KEY (attempt_id, question_index),
		FOREIGN KEY (attempt_id) REFERENCES attempts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		imported_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveQuiz stores a payload with its questions and returns the new quiz ID.
// CreatedAt is set to now when zero.
func (s *Store) SaveQuiz(p *model.QuizPayload) (int64, error) {
	entities, err := json.Marshal(p.KeyEntities)
	if err != nil {
		return 0, fmt.Errorf("encode key entities: %w", err)
	}
	sections, err := marshalStrings(p.Sections)
	if err != nil {
		return 0, fmt.Errorf("encode sections: %w", err)
	}
	related, err := marshalStrings(p.RelatedTopics)
	if err != nil {
		return 0, fmt.Errorf("encode related topics: %w", err)
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO quizzes (url, title, summary, key_entities, sections, related_topics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.URL, p.Title, p.Summary, string(entities), sections, related, createdAt,
	)
	if err != nil {
		return 0, err
	}
	quizID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, q := range p.Quiz {
		options, err := marshalStrings(q.Options)
		if err != nil {
			return 0, fmt.Errorf("encode options of question %d: %w", i, err)
		}
		_, err = tx.Exec(
			`INSERT INTO quiz_questions (quiz_id, position, question, options, answer, difficulty, explanation)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			quizID, i, q.Question, options, q.Answer, q.Difficulty, q.Explanation,
		)
		if err != nil {
			return 0, err
		}
	}

	return quizID, tx.Commit()
}

// GetQuiz returns the stored payload, or ErrNotFound.
func (s *Store) GetQuiz(id int64) (*model.QuizPayload, error) {
	var (
		p                          model.QuizPayload
		entities, sections, topics string
	)
	err := s.db.QueryRow(
		`SELECT id, url, title, summary, key_entities, sections, related_topics, created_at
		 FROM quizzes WHERE id = ?`, id,
	).Scan(&p.ID, &p.URL, &p.Title, &p.Summary, &entities, &sections, &topics, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(entities), &p.KeyEntities); err != nil {
		return nil, fmt.Errorf("decode key entities of quiz %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(sections), &p.Sections); err != nil {
		return nil, fmt.Errorf("decode sections of quiz %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(topics), &p.RelatedTopics); err != nil {
		return nil, fmt.Errorf("decode related topics of quiz %d: %w", id, err)
	}

	p.Quiz, err = s.getQuestions(id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) getQuestions(quizID int64) ([]model.Question, error) {
	rows, err := s.db.Query(
		`SELECT question, options, answer, difficulty, explanation
		 FROM quiz_questions WHERE quiz_id = ? ORDER BY position`, quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		var (
			q       model.Question
			options string
		)
		if err := rows.Scan(&q.Question, &options, &q.Answer, &q.Difficulty, &q.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("decode options of quiz %d: %w", quizID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetQuizByURL returns the most recent quiz generated for url, or nil if there is none.
func (s *Store) GetQuizByURL(url string) (*model.QuizPayload, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM quizzes WHERE url = ? ORDER BY id DESC LIMIT 1`, url,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.GetQuiz(id)
}

// ListHistory returns quizzes newest first. A limit of 0 returns all of them.
func (s *Store) ListHistory(limit int) ([]model.HistoryItem, error) {
	query := `SELECT q.id, q.url, q.title, q.created_at,
		(SELECT COUNT(*) FROM quiz_questions qq WHERE qq.quiz_id = q.id)
		FROM quizzes q ORDER BY q.created_at DESC, q.id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.HistoryItem
	for rows.Next() {
		var it model.HistoryItem
		if err := rows.Scan(&it.ID, &it.URL, &it.Title, &it.CreatedAt, &it.QuestionCount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeleteQuiz removes a quiz together with its questions and attempts.
func (s *Store) DeleteQuiz(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM attempt_selections WHERE attempt_id IN (SELECT id FROM attempts WHERE quiz_id = ?)`,
		`DELETE FROM attempts WHERE quiz_id = ?`,
		`DELETE FROM quiz_questions WHERE quiz_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, id); err != nil {
			return err
		}
	}
	res, err := tx.Exec(`DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ClearQuizzes removes every quiz, question, and attempt.
func (s *Store) ClearQuizzes() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"attempt_selections", "attempts", "quiz_questions", "quizzes"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// QuizCount returns the number of stored quizzes.
func (s *Store) QuizCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM quizzes`).Scan(&count)
	return count, err
}

func marshalStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}
