package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/wikiquiz/internal/model"
)

// CreateAttempt starts a fresh viewing of a quiz and returns its ID.
func (s *Store) CreateAttempt(quizID int64) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO attempts (id, quiz_id, created_at) VALUES (?, ?, ?)`,
		id, quizID, time.Now().UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetAttempt returns an attempt with its recorded selections, or ErrNotFound.
func (s *Store) GetAttempt(id string) (*model.Attempt, error) {
	a := model.Attempt{Selections: make(map[int]string)}
	err := s.db.QueryRow(
		`SELECT id, quiz_id, created_at FROM attempts WHERE id = ?`, id,
	).Scan(&a.ID, &a.QuizID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT question_index, selected FROM attempt_selections WHERE attempt_id = ?`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			idx      int
			selected string
		)
		if err := rows.Scan(&idx, &selected); err != nil {
			return nil, err
		}
		a.Selections[idx] = selected
	}
	return &a, rows.Err()
}

// RecordSelection stores the option picked for a question of an attempt.
// Only the first selection per question is kept; it reports whether this
// call was the one that got recorded.
func (s *Store) RecordSelection(attemptID string, questionIndex int, option string) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO attempt_selections (attempt_id, question_index, selected, selected_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(attempt_id, question_index) DO NOTHING`,
		attemptID, questionIndex, option, time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
