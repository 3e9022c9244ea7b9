package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/clipnest-go/internal/domain"
)

func TestCleanupCoordinator_Release(t *testing.T) {
	dir := t.TempDir()
	scratch := filepath.Join(dir, "ABC123-1a2b3c4d")
	require.NoError(t, os.MkdirAll(scratch, 0755))
	writeFile(t, filepath.Join(scratch, "leftover.txt"), "caption")

	final := filepath.Join(dir, "instagram_photo_ABC123_20240101_000000.jpg")
	writeFile(t, final, "jpeg")

	staged := &domain.StagedFile{Path: final, Filename: filepath.Base(final), ScratchDir: scratch}
	cleanup := NewCleanupCoordinator(nil)

	cleanup.Release(staged)
	assert.NoFileExists(t, final)
	assert.NoDirExists(t, scratch)

	// a second release is a no-op, even if the path is reused
	writeFile(t, final, "new")
	cleanup.Release(staged)
	assert.FileExists(t, final)
}

func TestCleanupCoordinator_ReleaseMissingFile(t *testing.T) {
	dir := t.TempDir()
	staged := &domain.StagedFile{Path: filepath.Join(dir, "gone.mp4")}

	cleanup := NewCleanupCoordinator(nil)
	assert.NotPanics(t, func() {
		cleanup.Release(staged)
		cleanup.Release(nil)
	})
}

func TestCleanupCoordinator_RemoveScratchEmpty(t *testing.T) {
	cleanup := NewCleanupCoordinator(nil)
	assert.NotPanics(t, func() {
		cleanup.RemoveScratch("")
		cleanup.RemoveFile("")
	})
}
