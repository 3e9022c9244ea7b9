package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
)

// Platform represents the source platform of a post
type Platform string

const (
	PlatformInstagram Platform = "instagram" // short-code based photo/video sharing
	PlatformFacebook  Platform = "facebook"  // numeric-ID based social network
	PlatformYouTube   Platform = "youtube"   // video platform
)

// Platforms lists every supported platform in routing order
var Platforms = []Platform{PlatformInstagram, PlatformFacebook, PlatformYouTube}

// ValidatePlatform checks if a platform is supported
func ValidatePlatform(platform Platform) bool {
	for _, p := range Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// ParsePlatform parses a platform name, case-insensitively
func ParsePlatform(s string) (Platform, error) {
	platform := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !ValidatePlatform(platform) {
		return "", fmt.Errorf("unsupported platform: %s", s)
	}
	return platform, nil
}

// DisplayName returns the human readable platform name used in messages
func (p Platform) DisplayName() string {
	switch p {
	case PlatformInstagram:
		return "Instagram"
	case PlatformFacebook:
		return "Facebook"
	case PlatformYouTube:
		return "YouTube"
	default:
		return string(p)
	}
}

// ContentType is the media kind declared by the caller
type ContentType string

const (
	ContentPhoto ContentType = "Photo"
	ContentReel  ContentType = "Reel"
	ContentVideo ContentType = "Video"
)

// ParseContentType parses a declared content type, case-insensitively.
// An empty string yields an empty ContentType and no error.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "photo":
		return ContentPhoto, nil
	case "reel":
		return ContentReel, nil
	case "video":
		return ContentVideo, nil
	default:
		return "", fmt.Errorf("unsupported content type: %s", s)
	}
}

// IsVideo reports whether the declared type expects a video
func (c ContentType) IsVideo() bool {
	return c == ContentReel || c == ContentVideo
}

// Kind returns the lowercase form used in paths and filenames
func (c ContentType) Kind() string {
	return strings.ToLower(string(c))
}

// Extension returns the single output extension expected for this type
func (c ContentType) Extension() string {
	if c.IsVideo() {
		return ".mp4"
	}
	return ".jpg"
}

// ContentReference identifies one piece of remote content. It is rebuilt
// from the URL or download path on every request.
type ContentReference struct {
	Platform    Platform
	Identifier  string
	ContentType ContentType
}

// DownloadReference encodes the reference as the download path echoed back by callers
func (r ContentReference) DownloadReference() string {
	return fmt.Sprintf("/api/%s/download/%s/%s", r.Platform, r.Identifier, r.ContentType.Kind())
}

// String implements fmt.Stringer for log fields
func (r ContentReference) String() string {
	return fmt.Sprintf("%s:%s", r.Platform, r.Identifier)
}

// ParseDownloadReference parses a download reference produced by DownloadReference.
// Absolute URLs are accepted; only the path is considered.
func ParseDownloadReference(ref string) (ContentReference, error) {
	path := ref
	if idx := strings.Index(path, "/api/"); idx >= 0 {
		path = path[idx:]
	}
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 5 || parts[0] != "api" || parts[2] != "download" {
		return ContentReference{}, fmt.Errorf("invalid download reference: %s", ref)
	}

	platform := Platform(parts[1])
	if !ValidatePlatform(platform) {
		return ContentReference{}, fmt.Errorf("invalid platform in download reference: %s", parts[1])
	}
	contentType, err := ParseContentType(parts[4])
	if err != nil || contentType == "" {
		return ContentReference{}, fmt.Errorf("invalid content type in download reference: %s", parts[4])
	}

	return ContentReference{Platform: platform, Identifier: parts[3], ContentType: contentType}, nil
}

// Duration is a whole number of seconds, or "not applicable" when the
// source is not a video.
type Duration struct {
	Seconds int64
	Valid   bool
}

// NotApplicable is the marker used when the content has no duration
var NotApplicable = Duration{}

// DurationFromSeconds rounds fractional seconds to a whole number
func DurationFromSeconds(s float64) Duration {
	return Duration{Seconds: int64(math.Round(s)), Valid: true}
}

// MarshalJSON renders a number of seconds or the "N/A" marker
func (d Duration) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return json.Marshal("N/A")
	}
	return json.Marshal(d.Seconds)
}

// UnmarshalJSON accepts both renderings of MarshalJSON
func (d *Duration) UnmarshalJSON(data []byte) error {
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err == nil {
		*d = DurationFromSeconds(seconds)
		return nil
	}
	*d = NotApplicable
	return nil
}

// MetadataRecord is the normalized metadata returned to callers
type MetadataRecord struct {
	Type        ContentType `json:"type"`
	Thumbnail   string      `json:"thumbnail"`
	Description string      `json:"description"`
	Duration    *Duration   `json:"duration,omitempty"`
	Qualities   []string    `json:"qualities,omitempty"`
	DownloadURL string      `json:"download_url"`
}

// MediaItem is one child of a multi-item (carousel) post
type MediaItem struct {
	IsVideo    bool
	DisplayURL string
	VideoURL   string
}

// Post is the descriptor a platform client returns for one post or video.
// Fields a platform cannot provide are left zero.
type Post struct {
	ID         string
	Typename   string
	IsVideo    bool
	DisplayURL string
	VideoURL   string
	Thumbnail  string
	Caption    string
	Title      string
	Duration   float64
	Items      []MediaItem
	WebpageURL string
}

// IsSidecar reports whether the post is a multi-item carousel
func (p *Post) IsSidecar() bool {
	return len(p.Items) > 0
}

// StagedFile is a file written to the download area for one request.
// It must be released exactly once after it has been streamed.
type StagedFile struct {
	Path       string
	Filename   string
	ScratchDir string

	release sync.Once
}

// ReleaseOnce runs fn the first time it is called for this file
func (s *StagedFile) ReleaseOnce(fn func()) {
	s.release.Do(fn)
}
