package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8081
download:
  dir: ` + filepath.Join(dir, "media") + `
facebook:
  retry:
    max_attempts: 5
    delay: 250ms
youtube:
  ffmpeg_location: /opt/ffmpeg/bin
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, filepath.Join(dir, "media"), config.Download.Dir)
	assert.Equal(t, 5, config.Facebook.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, config.Facebook.Retry.Delay)
	assert.Equal(t, 3, config.Instagram.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Second, config.Instagram.Retry.Delay)
	assert.Equal(t, "/opt/ffmpeg/bin", config.YouTube.FFmpegLocation)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8081\n"), 0644))

	t.Setenv("CLIPNEST_SERVER_PORT", "9090")
	t.Setenv("CLIPNEST_DOWNLOAD_DIR", "$HOME/clips")
	t.Setenv("HOME", dir)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, filepath.Join(dir, "clips"), config.Download.Dir)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("instagram:\n  retry:\n    max_attempts: 0\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instagram retry attempts must be at least 1")
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
