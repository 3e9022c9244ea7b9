package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotNil(t, config)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 5000, config.Server.Port)
	assert.Equal(t, "downloads", config.Download.Dir)
	assert.Equal(t, 8192, config.Download.ChunkSize)
	assert.Equal(t, 3, config.Instagram.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Second, config.Instagram.Retry.Delay)
	assert.Equal(t, 5*time.Second, config.Facebook.Retry.Delay)
	assert.Equal(t, 5*time.Second, config.YouTube.Retry.Delay)
	assert.Equal(t, "yt-dlp", config.YouTube.YTDLPBinary)
	assert.Empty(t, config.YouTube.FFmpegLocation)
	assert.Empty(t, config.Instagram.SessionID)
	assert.Equal(t, "info", config.Logging.Level)
}
