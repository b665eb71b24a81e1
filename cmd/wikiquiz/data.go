package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavelanni/wikiquiz/internal/model"
	"github.com/pavelanni/wikiquiz/internal/store"
)

func runImport(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	return importFiles(db, args)
}

// importFiles loads payload files into the store. A file whose content hash
// is already recorded is skipped, as is any payload whose URL is stored.
func importFiles(db *store.Store, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := sha256sum(data)
		storedHash, err := db.GetImportedFileHash(path)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}
		if storedHash == hash {
			slog.Info("quiz file unchanged, skipping", "path", path)
			continue
		}

		payloads, err := decodePayloads(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		imported := 0
		for i := range payloads {
			p := &payloads[i]
			if err := p.Validate(); err != nil {
				return fmt.Errorf("%s: quiz %d: %w", path, i+1, err)
			}
			existing, err := db.GetQuizByURL(p.URL)
			if err != nil {
				return fmt.Errorf("look up %s: %w", p.URL, err)
			}
			if existing != nil {
				slog.Info("quiz already stored, skipping", "url", p.URL, "quiz_id", existing.ID)
				continue
			}
			if _, err := db.SaveQuiz(p); err != nil {
				return fmt.Errorf("save quiz from %s: %w", path, err)
			}
			imported++
		}

		if err := db.SetImportedFileHash(path, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", path, err)
		}
		slog.Info("imported quizzes", "path", path, "count", imported, "in_file", len(payloads))
	}
	return nil
}

// decodePayloads accepts a single payload, an array of payloads, or the
// export document.
func decodePayloads(data []byte) ([]model.QuizPayload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []model.QuizPayload
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var doc struct {
		Quizzes []model.QuizPayload `json:"quizzes"`
		model.QuizPayload
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	if doc.Quizzes != nil {
		return doc.Quizzes, nil
	}
	return []model.QuizPayload{doc.QuizPayload}, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	quizzes, err := db.ExportQuizzes()
	if err != nil {
		return fmt.Errorf("export quizzes: %w", err)
	}

	export := model.QuizExport{
		ExportedAt: time.Now().UTC(),
		Count:      len(quizzes),
		Quizzes:    quizzes,
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return writeJSON(w, export)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
