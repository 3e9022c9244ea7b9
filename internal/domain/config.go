package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Download  DownloadConfig  `mapstructure:"download"`
	Instagram InstagramConfig `mapstructure:"instagram"`
	Facebook  FacebookConfig  `mapstructure:"facebook"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DownloadConfig contains configuration of the shared download area
type DownloadConfig struct {
	Dir             string `mapstructure:"dir"`
	ChunkSize       int    `mapstructure:"chunk_size"`
	ItemConcurrency int    `mapstructure:"item_concurrency"`
}

// RetryConfig bounds the fetch retry loop of one platform
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
}

// InstagramConfig contains Instagram-specific configuration
type InstagramConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	DocID     string        `mapstructure:"doc_id"`
	SessionID string        `mapstructure:"session_id"` // optional, unused when empty
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retry     RetryConfig   `mapstructure:"retry"`
}

// FacebookConfig contains Facebook-specific configuration
type FacebookConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retry     RetryConfig   `mapstructure:"retry"`
}

// YouTubeConfig contains YouTube-specific configuration
type YouTubeConfig struct {
	YTDLPBinary    string      `mapstructure:"ytdlp_binary"`
	FFmpegLocation string      `mapstructure:"ffmpeg_location"` // empty means ffmpeg on PATH
	CookieFile     string      `mapstructure:"cookie_file"`
	Retry          RetryConfig `mapstructure:"retry"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        5000,
			CORSOrigins: []string{"*"},
		},
		Download: DownloadConfig{
			Dir:             "downloads",
			ChunkSize:       8192,
			ItemConcurrency: 4,
		},
		Instagram: InstagramConfig{
			BaseURL:   "https://www.instagram.com",
			DocID:     "8845758582119845",
			UserAgent: defaultUserAgent,
			Timeout:   30 * time.Second,
			Retry:     RetryConfig{MaxAttempts: 3, Delay: 10 * time.Second},
		},
		Facebook: FacebookConfig{
			BaseURL:   "https://www.facebook.com",
			UserAgent: defaultUserAgent,
			Timeout:   30 * time.Second,
			Retry:     RetryConfig{MaxAttempts: 3, Delay: 5 * time.Second},
		},
		YouTube: YouTubeConfig{
			YTDLPBinary: "yt-dlp",
			Retry:       RetryConfig{MaxAttempts: 3, Delay: 5 * time.Second},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}

// RetryPolicies returns the retry config of every platform
func (c *Config) RetryPolicies() map[Platform]RetryConfig {
	return map[Platform]RetryConfig{
		PlatformInstagram: c.Instagram.Retry,
		PlatformFacebook:  c.Facebook.Retry,
		PlatformYouTube:   c.YouTube.Retry,
	}
}
