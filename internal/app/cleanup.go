package app

import (
	"errors"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// CleanupCoordinator deletes staged files once they have been streamed.
// Failures are logged and never returned to the caller.
type CleanupCoordinator struct {
	logger *zap.Logger
}

// NewCleanupCoordinator creates a cleanup coordinator
func NewCleanupCoordinator(logger *zap.Logger) *CleanupCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupCoordinator{logger: logger}
}

// Release removes the final file and the request's scratch directory.
// Only the first call for a given staged file does any work.
func (c *CleanupCoordinator) Release(staged *domain.StagedFile) {
	if staged == nil {
		return
	}
	staged.ReleaseOnce(func() {
		c.RemoveFile(staged.Path)
		c.RemoveScratch(staged.ScratchDir)
	})
}

// RemoveFile deletes path; a missing file counts as removed
func (c *CleanupCoordinator) RemoveFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("Failed to remove staged file", zap.String("path", path), zap.Error(err))
		return
	}
	c.logger.Debug("Removed staged file", zap.String("path", path))
}

// RemoveScratch deletes a scratch directory together with any leftover
// outputs. Scratch directories are request-owned so nothing else lives there.
func (c *CleanupCoordinator) RemoveScratch(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		c.logger.Warn("Failed to remove scratch directory", zap.String("dir", dir), zap.Error(err))
		return
	}
	c.logger.Debug("Removed scratch directory", zap.String("dir", dir))
}
