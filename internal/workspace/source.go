package workspace

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"
)

// FileSource reads documents from the local filesystem.
type FileSource struct{}

// NewFileSource returns a TextSource backed by os.ReadFile.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Open implements TextSource.
func (s *FileSource) Open(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("failed to decode %s: not valid UTF-8", path)
	}
	return NewDocument(path, string(data)), nil
}
