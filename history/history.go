package history

// This file contains the benchmark history store: a single JSON document
// that every session appends its record to.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shellbench/shellbench/model"
)

// File is the on-disk layout of the history document.
type File struct {
	Benchmarks []model.Record `json:"benchmarks"`
}

// Store persists records to Path.
type Store struct {
	Path   string
	Logger zerolog.Logger
}

// ProjectRoot returns the git repository root, or the working directory
// when not inside a repository.
func ProjectRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err == nil {
		if root := strings.TrimSpace(string(output)); root != "" {
			return root, nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine project root: %w", err)
	}
	return cwd, nil
}

// ResultsDir is the directory holding everything a session writes.
func ResultsDir(root string) string {
	return filepath.Join(root, "results")
}

// DefaultPath is the history file location below the project root.
func DefaultPath(root string) string {
	return filepath.Join(ResultsDir(root), "benchmark-history.json")
}

// Load returns the stored records, oldest first. A missing file is an empty
// history; so is a corrupt one, which is reported as a warning.
func (s *Store) Load() ([]model.Record, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		s.Logger.Warn().Err(err).Str("path", s.Path).Msg("Failed to parse history, starting fresh")
		return nil, nil
	}

	return f.Benchmarks, nil
}

// Append adds r to the end of the history and returns the full history. The
// document is replaced atomically so an interrupted write never truncates it.
func (s *Store) Append(r model.Record) ([]model.Record, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	records = append(records, r)

	data, err := json.MarshalIndent(File{Benchmarks: records}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}

	if err := writeFileAtomic(s.Path, data); err != nil {
		return nil, err
	}

	s.Logger.Debug().Str("path", s.Path).Int("records", len(records)).Msg("History saved")
	return records, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
