// Package dump provides sinks for dump tasks: destinations that
// receive candidate snapshots instead of deleting them.
package dump

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kekst/socialnuke/pkg/platform"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename makes a target name safe to use as a file name.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "dump"
	}
	return name
}

// FileSink appends snapshots to a JSON Lines file under outputDir.
type FileSink struct {
	file *os.File
	enc  *json.Encoder
	path string
}

// NewFileSink creates the output directory and opens name.jsonl for
// appending.
func NewFileSink(outputDir, name string) (*FileSink, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outputDir, SanitizeFilename(name)+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump file: %w", err)
	}

	return &FileSink{file: f, enc: json.NewEncoder(f), path: path}, nil
}

// Path returns the file the sink writes to.
func (s *FileSink) Path() string { return s.path }

// Write appends one snapshot as a JSON line.
func (s *FileSink) Write(ctx context.Context, snap platform.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	return s.file.Close()
}
