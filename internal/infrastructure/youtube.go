package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// youtubeOutputTemplate is the scratch file name; the final output is video.mp4
const youtubeOutputTemplate = "video.%(ext)s"

// defaultYouTubeHeight is used when no or an unknown quality is requested
const defaultYouTubeHeight = 720

var youtubeHeights = map[string]int{
	"144p":  144,
	"240p":  240,
	"360p":  360,
	"480p":  480,
	"720p":  720,
	"1080p": 1080,
}

// videoInfo is the subset of yt-dlp's info JSON the gateway uses
type videoInfo struct {
	ID          string
	Title       string
	Description string
	Thumbnail   string
	Duration    float64
	WebpageURL  string
}

// videoExtractor runs yt-dlp for metadata and downloads
type videoExtractor interface {
	Probe(ctx context.Context, videoURL string) (*videoInfo, error)
	Download(ctx context.Context, videoURL, dir, format string) error
}

// YouTubeSource implements domain.Source for YouTube videos
type YouTubeSource struct {
	extractor videoExtractor
	logger    *zap.Logger
}

// NewYouTubeSource creates a YouTube source backed by the yt-dlp binary
func NewYouTubeSource(config *domain.YouTubeConfig, logger *zap.Logger) *YouTubeSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YouTubeSource{
		extractor: &ytdlpExtractor{config: config, logger: logger},
		logger:    logger,
	}
}

// Platform returns the platform this source handles
func (s *YouTubeSource) Platform() domain.Platform {
	return domain.PlatformYouTube
}

// Extract returns the video id of a watch or short link
func (s *YouTubeSource) Extract(rawURL string) (string, error) {
	return domain.ExtractIdentifier(domain.PlatformYouTube, rawURL)
}

// SupportedTypes returns the content types YouTube serves
func (s *YouTubeSource) SupportedTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentVideo}
}

// StagingMode returns StageScratch; yt-dlp writes and merges its own files
func (s *YouTubeSource) StagingMode() domain.StagingMode {
	return domain.StageScratch
}

// Fetch probes the video without downloading it
func (s *YouTubeSource) Fetch(ctx context.Context, ref domain.ContentReference) (*domain.Post, error) {
	info, err := s.extractor.Probe(ctx, domain.YouTubeWatchURL(ref.Identifier))
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		ID:         ref.Identifier,
		IsVideo:    true,
		Title:      info.Title,
		Caption:    info.Description,
		Thumbnail:  info.Thumbnail,
		Duration:   info.Duration,
		WebpageURL: info.WebpageURL,
	}
	if info.ID != "" {
		post.ID = info.ID
	}
	return post, nil
}

// Stage downloads and merges the requested quality into the scratch directory
func (s *YouTubeSource) Stage(ctx context.Context, req domain.StageRequest) error {
	if req.ScratchDir == "" {
		return domain.IOFailure("scratch directory not provided", nil)
	}
	format := FormatForQuality(req.Quality)
	s.logger.Debug("Downloading video",
		zap.String("identifier", req.Ref.Identifier),
		zap.String("quality", req.Quality),
		zap.String("format", format))
	return s.extractor.Download(ctx, domain.YouTubeWatchURL(req.Ref.Identifier), req.ScratchDir, format)
}

// FormatForQuality returns the yt-dlp format selector for a quality label,
// capping the video height and falling back to 720p
func FormatForQuality(quality string) string {
	height, ok := youtubeHeights[strings.ToLower(strings.TrimSpace(quality))]
	if !ok {
		height = defaultYouTubeHeight
	}
	return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", height, height)
}

// ytdlpExtractor drives the yt-dlp executable through go-ytdlp
type ytdlpExtractor struct {
	config *domain.YouTubeConfig
	logger *zap.Logger
}

// command returns a builder with the shared executable, ffmpeg and cookie settings
func (e *ytdlpExtractor) command() *ytdlp.Command {
	cmd := ytdlp.New().NoPlaylist()
	if e.config.YTDLPBinary != "" {
		cmd.SetExecutable(e.config.YTDLPBinary)
	}
	if e.config.FFmpegLocation != "" {
		cmd.FFmpegLocation(e.config.FFmpegLocation)
	}
	if e.config.CookieFile != "" && fileExists(e.config.CookieFile) {
		cmd.Cookies(e.config.CookieFile)
	}
	return cmd
}

// Probe runs yt-dlp with --skip-download and decodes the printed info JSON
func (e *ytdlpExtractor) Probe(ctx context.Context, videoURL string) (*videoInfo, error) {
	result, err := e.command().SkipDownload().PrintJSON().Run(ctx, videoURL)
	e.logRun("probe", result, err)
	if err != nil {
		return nil, classifyYTDLPError(ctx, err, stderrOf(result))
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return nil, domain.Unknown(fmt.Errorf("failed to decode yt-dlp output: %w", err))
	}
	if len(infos) == 0 {
		return nil, domain.Unknown(errors.New("yt-dlp returned no video info"))
	}

	info := infos[0]
	return &videoInfo{
		ID:          info.ID,
		Title:       deref(info.Title),
		Description: deref(info.Description),
		Thumbnail:   deref(info.Thumbnail),
		Duration:    derefFloat(info.Duration),
		WebpageURL:  deref(info.WebpageURL),
	}, nil
}

// downloadCommand selects format, writes into dir and forces an mp4
// container. Merged streams go through MergeOutputFormat; a single
// pre-muxed fallback stream (webm, 3gp) is remuxed.
func (e *ytdlpExtractor) downloadCommand(dir, format string) *ytdlp.Command {
	return e.command().
		Format(format).
		MergeOutputFormat("mp4").
		RemuxVideo("mp4").
		Output(filepath.Join(dir, youtubeOutputTemplate))
}

// Download writes video.mp4 into dir
func (e *ytdlpExtractor) Download(ctx context.Context, videoURL, dir, format string) error {
	result, err := e.downloadCommand(dir, format).Run(ctx, videoURL)
	e.logRun("download", result, err)
	if err != nil {
		return classifyYTDLPError(ctx, err, stderrOf(result))
	}
	return nil
}

// logRun records the executed command line
func (e *ytdlpExtractor) logRun(op string, result *ytdlp.Result, err error) {
	if result == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("command", ShellEscapeCommand(result.Executable, result.Args...)),
	}
	if err != nil {
		e.logger.Warn("yt-dlp failed", append(fields, zap.Error(err))...)
		return
	}
	e.logger.Debug("yt-dlp finished", fields...)
}

func stderrOf(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	return result.Stderr
}

var (
	ytdlpTransientMarkers = []string{
		"http error 429",
		"too many requests",
		"http error 500",
		"http error 502",
		"http error 503",
		"timed out",
		"connection reset",
		"connection refused",
		"temporary failure in name resolution",
		"network is unreachable",
		"remote end closed connection",
		"unable to download webpage",
	}
	ytdlpNotFoundMarkers = []string{
		"video unavailable",
		"private video",
		"has been removed",
		"does not exist",
		"http error 404",
	}
	ytdlpPermanentMarkers = []string{
		"sign in to confirm",
		"unsupported url",
		"incomplete youtube id",
		"members-only",
		"requested format is not available",
	}
)

// classifyYTDLPError maps a yt-dlp failure to a failure class using its
// stderr output
func classifyYTDLPError(ctx context.Context, err error, stderr string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, exec.ErrNotFound) {
		return domain.NewError(domain.KindUnknown, "yt-dlp executable not found", err)
	}

	text := strings.ToLower(stderr + "\n" + err.Error())
	wrapped := err
	if msg := lastErrorLine(stderr); msg != "" {
		wrapped = fmt.Errorf("%s: %w", msg, err)
	}

	switch {
	case containsAny(text, ytdlpNotFoundMarkers):
		return domain.NotFound("Video unavailable", wrapped)
	case containsAny(text, ytdlpPermanentMarkers):
		return domain.Permanent("Video cannot be downloaded", wrapped)
	case containsAny(text, ytdlpTransientMarkers):
		return domain.Transient(wrapped)
	default:
		return domain.Unknown(wrapped)
	}
}

// lastErrorLine returns the last "ERROR:" line yt-dlp printed
func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return line
		}
	}
	return ""
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
