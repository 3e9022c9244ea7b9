package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// Inline player config keys, in order of preference
var fbInlineVideoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"browser_native_hd_url":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"playable_url_quality_hd":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"hd_src":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"browser_native_sd_url":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"playable_url":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"sd_src":"((?:[^"\\]|\\.)+)"`),
}

var fbDurationPattern = regexp.MustCompile(`"playable_duration_in_ms":(\d+)`)

// FacebookSource implements domain.Source for Facebook videos
type FacebookSource struct {
	config  *domain.FacebookConfig
	fetcher *HTTPFetcher
	logger  *zap.Logger
}

// NewFacebookSource creates a new Facebook source
func NewFacebookSource(config *domain.FacebookConfig, client *http.Client, download *domain.DownloadConfig, logger *zap.Logger) *FacebookSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacebookSource{
		config:  config,
		fetcher: NewHTTPFetcher(client, config.UserAgent, download.ChunkSize),
		logger:  logger,
	}
}

// Platform returns the platform this source handles
func (s *FacebookSource) Platform() domain.Platform {
	return domain.PlatformFacebook
}

// Extract returns the numeric post or video id of a URL
func (s *FacebookSource) Extract(rawURL string) (string, error) {
	return domain.ExtractIdentifier(domain.PlatformFacebook, rawURL)
}

// SupportedTypes returns the content types Facebook serves
func (s *FacebookSource) SupportedTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentVideo}
}

// StagingMode returns StageDirect; the video is a single stream
func (s *FacebookSource) StagingMode() domain.StagingMode {
	return domain.StageDirect
}

// Fetch loads the post page and scrapes its media descriptor
func (s *FacebookSource) Fetch(ctx context.Context, ref domain.ContentReference) (*domain.Post, error) {
	pageURL := strings.TrimRight(s.config.BaseURL, "/") + "/" + ref.Identifier

	headers := http.Header{}
	headers.Set("Accept", "text/html,application/xhtml+xml")
	headers.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.fetcher.Get(ctx, pageURL, headers)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.NotFound("Post not found", err)
		}
		return nil, err
	}
	body, err := ReadBody(resp)
	if err != nil {
		return nil, err
	}

	post, err := parseFacebookPage(ref.Identifier, body)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Scraped post page",
		zap.String("identifier", ref.Identifier),
		zap.Bool("is_video", post.IsVideo))
	return post, nil
}

// parseFacebookPage extracts Open Graph tags and falls back to the inline
// player config for the video stream
func parseFacebookPage(id string, body []byte) (*domain.Post, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domain.Unknown(fmt.Errorf("failed to parse facebook page: %w", err))
	}

	meta := func(names ...string) string {
		for _, name := range names {
			selector := fmt.Sprintf("meta[property='%s'], meta[name='%s']", name, name)
			if content, ok := doc.Find(selector).First().Attr("content"); ok && content != "" {
				return strings.TrimSpace(content)
			}
		}
		return ""
	}

	post := &domain.Post{
		ID:         id,
		Thumbnail:  meta("og:image", "twitter:image"),
		Caption:    meta("og:description", "description"),
		Title:      meta("og:title", "twitter:title"),
		VideoURL:   meta("og:video:secure_url", "og:video:url", "og:video"),
		WebpageURL: meta("og:url"),
	}
	if post.Caption == "" {
		post.Caption = post.Title
	}
	if post.VideoURL == "" {
		post.VideoURL = inlineVideoURL(body)
	}
	post.IsVideo = post.VideoURL != ""
	post.DisplayURL = post.Thumbnail

	if seconds, err := strconv.ParseFloat(meta("og:video:duration", "video:duration"), 64); err == nil {
		post.Duration = seconds
	} else if m := fbDurationPattern.FindSubmatch(body); m != nil {
		if ms, err := strconv.ParseFloat(string(m[1]), 64); err == nil {
			post.Duration = ms / 1000
		}
	}

	return post, nil
}

// inlineVideoURL searches the page scripts for a playable stream URL
func inlineVideoURL(body []byte) string {
	for _, pattern := range fbInlineVideoPatterns {
		m := pattern.FindSubmatch(body)
		if m == nil {
			continue
		}
		var decoded string
		if err := json.Unmarshal([]byte(`"`+string(m[1])+`"`), &decoded); err == nil && decoded != "" {
			return decoded
		}
	}
	return ""
}

// Stage streams the video straight into the target path
func (s *FacebookSource) Stage(ctx context.Context, req domain.StageRequest) error {
	if req.Post.VideoURL == "" {
		return &domain.Error{
			Kind:    domain.KindContentTypeMismatch,
			Message: "This URL does not point to a video",
		}
	}

	headers := http.Header{}
	headers.Set("Referer", "https://www.facebook.com/")

	s.logger.Debug("Streaming video",
		zap.String("identifier", req.Ref.Identifier),
		zap.String("target", req.TargetPath))
	return s.fetcher.DownloadTo(ctx, req.Post.VideoURL, req.TargetPath, headers)
}
