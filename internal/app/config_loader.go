package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.clipnest")
		v.AddConfigPath("/etc/clipnest")
	}

	// Environment variables, e.g. CLIPNEST_SERVER_PORT
	v.SetEnvPrefix("CLIPNEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, config)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("server.host", config.Server.Host)
	v.SetDefault("server.port", config.Server.Port)
	v.SetDefault("server.cors_origins", config.Server.CORSOrigins)

	v.SetDefault("download.dir", config.Download.Dir)
	v.SetDefault("download.chunk_size", config.Download.ChunkSize)
	v.SetDefault("download.item_concurrency", config.Download.ItemConcurrency)

	v.SetDefault("instagram.base_url", config.Instagram.BaseURL)
	v.SetDefault("instagram.doc_id", config.Instagram.DocID)
	v.SetDefault("instagram.session_id", config.Instagram.SessionID)
	v.SetDefault("instagram.user_agent", config.Instagram.UserAgent)
	v.SetDefault("instagram.timeout", config.Instagram.Timeout)
	v.SetDefault("instagram.retry.max_attempts", config.Instagram.Retry.MaxAttempts)
	v.SetDefault("instagram.retry.delay", config.Instagram.Retry.Delay)

	v.SetDefault("facebook.base_url", config.Facebook.BaseURL)
	v.SetDefault("facebook.user_agent", config.Facebook.UserAgent)
	v.SetDefault("facebook.timeout", config.Facebook.Timeout)
	v.SetDefault("facebook.retry.max_attempts", config.Facebook.Retry.MaxAttempts)
	v.SetDefault("facebook.retry.delay", config.Facebook.Retry.Delay)

	v.SetDefault("youtube.ytdlp_binary", config.YouTube.YTDLPBinary)
	v.SetDefault("youtube.ffmpeg_location", config.YouTube.FFmpegLocation)
	v.SetDefault("youtube.cookie_file", config.YouTube.CookieFile)
	v.SetDefault("youtube.retry.max_attempts", config.YouTube.Retry.MaxAttempts)
	v.SetDefault("youtube.retry.delay", config.YouTube.Retry.Delay)

	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.Dir = expandPath(config.Download.Dir)
	config.YouTube.FFmpegLocation = expandPath(config.YouTube.FFmpegLocation)
	config.YouTube.CookieFile = expandPath(config.YouTube.CookieFile)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.Dir == "" {
		return fmt.Errorf("download directory not configured")
	}

	if config.Download.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be at least 1")
	}

	if config.Download.ItemConcurrency < 1 {
		return fmt.Errorf("item concurrency must be at least 1")
	}

	for platform, retry := range config.RetryPolicies() {
		if retry.MaxAttempts < 1 {
			return fmt.Errorf("%s retry attempts must be at least 1", platform)
		}
		if retry.Delay < 0 {
			return fmt.Errorf("%s retry delay cannot be negative", platform)
		}
	}

	if config.Instagram.DocID == "" {
		return fmt.Errorf("instagram doc id not configured")
	}

	if config.YouTube.YTDLPBinary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
