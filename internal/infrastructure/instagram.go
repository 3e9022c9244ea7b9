package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// instagramAppID is the public web client id expected by the GraphQL endpoint
const instagramAppID = "936619743392459"

const inaccessiblePost = "Invalid or inaccessible post (possibly private or deleted)"

// InstagramSource implements domain.Source for Instagram posts and reels
type InstagramSource struct {
	config      *domain.InstagramConfig
	fetcher     *HTTPFetcher
	concurrency int
	logger      *zap.Logger
}

// NewInstagramSource creates a new Instagram source
func NewInstagramSource(config *domain.InstagramConfig, client *http.Client, download *domain.DownloadConfig, logger *zap.Logger) *InstagramSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := download.ItemConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &InstagramSource{
		config:      config,
		fetcher:     NewHTTPFetcher(client, config.UserAgent, download.ChunkSize),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Platform returns the platform this source handles
func (s *InstagramSource) Platform() domain.Platform {
	return domain.PlatformInstagram
}

// Extract returns the shortcode of a post or reel URL
func (s *InstagramSource) Extract(rawURL string) (string, error) {
	return domain.ExtractIdentifier(domain.PlatformInstagram, rawURL)
}

// SupportedTypes returns the content types Instagram serves
func (s *InstagramSource) SupportedTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentPhoto, domain.ContentReel}
}

// StagingMode returns StageScratch; a post may produce several files
func (s *InstagramSource) StagingMode() domain.StagingMode {
	return domain.StageScratch
}

type igCaptionEdges struct {
	Edges []struct {
		Node struct {
			Text string `json:"text"`
		} `json:"node"`
	} `json:"edges"`
}

type igNode struct {
	Typename   string `json:"__typename"`
	IsVideo    bool   `json:"is_video"`
	DisplayURL string `json:"display_url"`
	VideoURL   string `json:"video_url"`
}

type igMedia struct {
	igNode
	Shortcode         string         `json:"shortcode"`
	VideoDuration     float64        `json:"video_duration"`
	Caption           igCaptionEdges `json:"edge_media_to_caption"`
	SidecarToChildren struct {
		Edges []struct {
			Node igNode `json:"node"`
		} `json:"edges"`
	} `json:"edge_sidecar_to_children"`
}

type igResponse struct {
	Data struct {
		XDTShortcodeMedia *igMedia `json:"xdt_shortcode_media"`
		ShortcodeMedia    *igMedia `json:"shortcode_media"`
	} `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Fetch queries the GraphQL endpoint for one shortcode
func (s *InstagramSource) Fetch(ctx context.Context, ref domain.ContentReference) (*domain.Post, error) {
	variables, _ := json.Marshal(map[string]string{"shortcode": ref.Identifier})
	form := url.Values{}
	form.Set("variables", string(variables))
	form.Set("doc_id", s.config.DocID)

	endpoint := strings.TrimRight(s.config.BaseURL, "/") + "/graphql/query"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.Unknown(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-IG-App-ID", instagramAppID)
	req.Header.Set("Referer", fmt.Sprintf("%s/p/%s/", strings.TrimRight(s.config.BaseURL, "/"), ref.Identifier))
	if s.config.SessionID != "" {
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: s.config.SessionID})
	}

	resp, err := s.fetcher.Do(req)
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

	return parseInstagramResponse(ref.Identifier, body)
}

// parseInstagramResponse converts a GraphQL response into a post descriptor
func parseInstagramResponse(shortcode string, body []byte) (*domain.Post, error) {
	var payload igResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.Unknown(fmt.Errorf("failed to decode instagram response: %w", err))
	}
	if payload.Status == "fail" {
		if strings.Contains(strings.ToLower(payload.Message), "wait") {
			return nil, domain.Transient(fmt.Errorf("instagram: %s", payload.Message))
		}
		return nil, domain.Permanent(inaccessiblePost, fmt.Errorf("instagram: %s", payload.Message))
	}

	media := payload.Data.XDTShortcodeMedia
	if media == nil {
		media = payload.Data.ShortcodeMedia
	}
	if media == nil {
		return nil, domain.Permanent(inaccessiblePost, fmt.Errorf("no media returned for %s", shortcode))
	}

	post := &domain.Post{
		ID:         shortcode,
		Typename:   strings.TrimPrefix(media.Typename, "XDT"),
		IsVideo:    media.IsVideo,
		DisplayURL: media.DisplayURL,
		VideoURL:   media.VideoURL,
		Duration:   media.VideoDuration,
		WebpageURL: fmt.Sprintf("https://www.instagram.com/p/%s/", shortcode),
	}
	if media.Shortcode != "" {
		post.ID = media.Shortcode
	}
	if len(media.Caption.Edges) > 0 {
		post.Caption = media.Caption.Edges[0].Node.Text
	}
	for _, edge := range media.SidecarToChildren.Edges {
		post.Items = append(post.Items, domain.MediaItem{
			IsVideo:    edge.Node.IsVideo,
			DisplayURL: edge.Node.DisplayURL,
			VideoURL:   edge.Node.VideoURL,
		})
	}

	return post, nil
}

// igFile is one file written into the scratch directory
type igFile struct {
	url  string
	name string
}

// postFiles lists the files a post expands to: an image per item (the
// thumbnail for videos) and the video stream for video items
func postFiles(post *domain.Post) []igFile {
	var files []igFile
	add := func(base string, isVideo bool, displayURL, videoURL string) {
		if displayURL != "" {
			files = append(files, igFile{url: displayURL, name: base + ".jpg"})
		}
		if isVideo && videoURL != "" {
			files = append(files, igFile{url: videoURL, name: base + ".mp4"})
		}
	}

	if post.IsSidecar() {
		for i, item := range post.Items {
			add(fmt.Sprintf("%s_%02d", post.ID, i+1), item.IsVideo, item.DisplayURL, item.VideoURL)
		}
		return files
	}
	add(post.ID, post.IsVideo, post.DisplayURL, post.VideoURL)
	return files
}

// Stage downloads every file of the post into the scratch directory
func (s *InstagramSource) Stage(ctx context.Context, req domain.StageRequest) error {
	if req.ScratchDir == "" {
		return domain.IOFailure("scratch directory not provided", nil)
	}

	files := postFiles(req.Post)
	s.logger.Debug("Downloading post files",
		zap.String("identifier", req.Ref.Identifier),
		zap.Int("files", len(files)))

	headers := http.Header{}
	headers.Set("Referer", "https://www.instagram.com/")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, file := range files {
		g.Go(func() error {
			return s.fetcher.DownloadTo(gctx, file.url, filepath.Join(req.ScratchDir, file.name), headers)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if req.Post.Caption != "" {
		captionPath := filepath.Join(req.ScratchDir, req.Post.ID+".txt")
		if err := os.WriteFile(captionPath, []byte(req.Post.Caption), 0644); err != nil {
			s.logger.Warn("Failed to write caption", zap.String("path", captionPath), zap.Error(err))
		}
	}
	return nil
}
