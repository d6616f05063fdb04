package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	appcollection "github.com/hawaiibiz/intel/internal/application/collection"
	"github.com/hawaiibiz/intel/internal/domain/business"
)

// FileArchive writes batches under a local directory using the same key
// layout as S3Archive. Meant for development.
type FileArchive struct {
	Dir string
}

var _ appcollection.Archiver = (*FileArchive)(nil)

// NewFileArchive creates a FileArchive rooted at dir
func NewFileArchive(dir string) (*FileArchive, error) {
	if dir == "" {
		return nil, errors.New("archive directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileArchive{Dir: dir}, nil
}

// Archive implements collection.Archiver. The batch is written to a
// temporary file first so readers never see a partial one.
func (f *FileArchive) Archive(ctx context.Context, runID uuid.UUID, adapter string, candidates []business.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := Key(runID, adapter)
	if err != nil {
		return err
	}
	body, err := encodeLines(candidates)
	if err != nil {
		return err
	}

	dst := filepath.Join(f.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, body, 0o640); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
