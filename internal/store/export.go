package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pavelanni/wikiquiz/internal/model"
)

// ExportQuizzes returns every stored quiz, oldest first.
func (s *Store) ExportQuizzes() ([]model.QuizPayload, error) {
	rows, err := s.db.Query(`SELECT id FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	quizzes := make([]model.QuizPayload, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetQuiz(id)
		if err != nil {
			return nil, fmt.Errorf("get quiz %d: %w", id, err)
		}
		quizzes = append(quizzes, *p)
	}
	return quizzes, nil
}

// GetImportedFileHash returns the recorded hash for path, or "" if it was never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records that path was imported with the given content hash.
func (s *Store) SetImportedFileHash(path, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (path, hash, imported_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = ?, imported_at = ?`,
		path, hash, time.Now().UTC(), hash, time.Now().UTC(),
	)
	return err
}
