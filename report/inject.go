package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	StartMarker = "<!-- BENCHMARK_RESULTS_START -->"
	EndMarker   = "<!-- BENCHMARK_RESULTS_END -->"
)

// ErrMarkersNotFound is returned when the document lacks the start marker or
// an end marker after it.
var ErrMarkersNotFound = errors.New("benchmark result markers not found")

// Inject replaces everything between the first start marker and the end
// marker following it with fragment. Markers are kept. The document is
// returned unchanged together with ErrMarkersNotFound when either is
// missing.
func Inject(doc, fragment string) (string, error) {
	start := strings.Index(doc, StartMarker)
	if start < 0 {
		return doc, ErrMarkersNotFound
	}
	bodyStart := start + len(StartMarker)

	end := strings.Index(doc[bodyStart:], EndMarker)
	if end < 0 {
		return doc, ErrMarkersNotFound
	}
	end += bodyStart

	var sb strings.Builder
	sb.Grow(len(doc) + len(fragment))
	sb.WriteString(doc[:bodyStart])
	sb.WriteString("\n")
	sb.WriteString(fragment)
	sb.WriteString(doc[end:])
	return sb.String(), nil
}

// InjectFile applies Inject to the file at path. It reports false without
// error when the file does not exist.
func InjectFile(path, fragment string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated, err := Inject(string(data), fragment)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if updated == string(data) {
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
