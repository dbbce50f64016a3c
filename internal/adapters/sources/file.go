package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/curata/curata/internal/domain/model"
)

// FileSource reads a JSON array of opportunities from disk. Useful for
// seeding a known catalog without a remote feed.
type FileSource struct {
	path string
	name string
}

// FileOption applies a configuration option to the FileSource.
type FileOption func(*FileSource)

// WithFileSourceName overrides the name stamped on fetched records.
func WithFileSourceName(name string) FileOption {
	return func(s *FileSource) {
		if name != "" {
			s.name = name
		}
	}
}

// NewFileSource creates a file-backed source for the given path.
func NewFileSource(path string, opts ...FileOption) *FileSource {
	s := &FileSource{
		path: path,
		name: "file:" + filepath.Base(path),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the source.
func (s *FileSource) Name() string { return s.name }

// Fetch reads and decodes the file. Records with an empty source field are
// stamped with the file source's name.
func (s *FileSource) Fetch(ctx context.Context) ([]model.Opportunity, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrUnavailable, s.path, err)
	}

	var opportunities []model.Opportunity
	if err := json.Unmarshal(raw, &opportunities); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrBadPayload, s.path, err)
	}

	for i := range opportunities {
		if opportunities[i].Source == "" {
			opportunities[i].Source = s.name
		}
	}
	return opportunities, nil
}
