package app

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/clipnest-go/internal/domain"
)

func newTestStager(t *testing.T) *Stager {
	t.Helper()
	stager, err := NewStager(t.TempDir())
	require.NoError(t, err)
	return stager
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFinalName(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	tests := []struct {
		ref  domain.ContentReference
		want string
	}{
		{
			ref:  domain.ContentReference{Platform: domain.PlatformInstagram, Identifier: "ABC123", ContentType: domain.ContentPhoto},
			want: "instagram_photo_ABC123_20240309_140507.jpg",
		},
		{
			ref:  domain.ContentReference{Platform: domain.PlatformInstagram, Identifier: "R1", ContentType: domain.ContentReel},
			want: "instagram_reel_R1_20240309_140507.mp4",
		},
		{
			ref:  domain.ContentReference{Platform: domain.PlatformYouTube, Identifier: "dQw4w9WgXcQ", ContentType: domain.ContentVideo},
			want: "youtube_video_dQw4w9WgXcQ_20240309_140507.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FinalName(tt.ref, at))
		})
	}
}

func TestStager_FinalPath(t *testing.T) {
	stager := newTestStager(t)
	name, path := stager.FinalPath(testRef)

	assert.Regexp(t, regexp.MustCompile(`photo_ABC123_\d{8}_\d{6}\.jpg$`), name)
	assert.Equal(t, stager.Dir(), filepath.Dir(path))
	assert.Regexp(t, regexp.MustCompile(`^instagram_photo_ABC123_\d{8}_\d{6}-[0-9a-f]{8}\.jpg$`), filepath.Base(path))
	assert.True(t, filepath.IsAbs(path))
}

func TestStager_FinalPathUniqueWithinSecond(t *testing.T) {
	stager := newTestStager(t)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	stager.now = func() time.Time { return fixed }

	firstName, firstPath := stager.FinalPath(testRef)
	secondName, secondPath := stager.FinalPath(testRef)

	assert.Equal(t, firstName, secondName)
	assert.NotEqual(t, firstPath, secondPath)
}

func TestStager_NewScratchIsUnique(t *testing.T) {
	stager := newTestStager(t)

	first, err := stager.NewScratch("ABC123")
	require.NoError(t, err)
	second, err := stager.NewScratch("ABC123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.DirExists(t, first)
	assert.DirExists(t, second)
	assert.Equal(t, stager.Dir(), filepath.Dir(first))
}

func TestNewStager_RequiresDir(t *testing.T) {
	_, err := NewStager("")
	assert.Error(t, err)
}

func TestSelectOutput_PicksFirstLexicalMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.jpg"), "b")
	writeFile(t, filepath.Join(dir, "a.jpg"), "a")
	writeFile(t, filepath.Join(dir, "a.mp4"), "video")
	writeFile(t, filepath.Join(dir, "caption.txt"), "text")

	path, err := SelectOutput(dir, ".jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.jpg"), path)

	path, err = SelectOutput(dir, ".mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.mp4"), path)
}

func TestSelectOutput_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "caption.txt"), "text")

	_, err := SelectOutput(dir, ".mp4")
	require.Error(t, err)
	assert.Equal(t, domain.KindExpectedFileNotFound, domain.KindOf(err))
	assert.Equal(t, "Video file not found", domain.PublicMessage(err))

	_, err = SelectOutput(dir, ".jpg")
	require.Error(t, err)
	assert.Equal(t, "Image file not found", domain.PublicMessage(err))
}

func TestPromote(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scratch", "video.mp4")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	writeFile(t, src, "payload")

	dest := filepath.Join(dir, "final.mp4")
	require.NoError(t, Promote(src, dest))

	assert.NoFileExists(t, src)
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}

func TestPromote_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := Promote(filepath.Join(dir, "missing.jpg"), filepath.Join(dir, "final.jpg"))
	require.Error(t, err)
	assert.Equal(t, domain.KindIO, domain.KindOf(err))
	assert.NoFileExists(t, filepath.Join(dir, "final.jpg"))
}
