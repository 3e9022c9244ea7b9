package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	instagramPathPattern = regexp.MustCompile(`^/(?:p|reel|reels|tv)/([A-Za-z0-9_-]+)(?:/|$)`)
	facebookPathPatterns = []*regexp.Regexp{
		regexp.MustCompile(`posts/(\d+)`),
		regexp.MustCompile(`/videos/(\d+)`),
		regexp.MustCompile(`/(\d+)(?:/|$)`),
	}
	instagramIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	facebookIDPattern  = regexp.MustCompile(`^\d+$`)
	youtubeIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// invalidURL builds the InvalidUrlFormat error for a platform
func invalidURL(platform Platform, raw string, hint string) *Error {
	msg := fmt.Sprintf("Invalid %s URL format", platform.DisplayName())
	if hint != "" {
		msg = fmt.Sprintf("%s. %s", msg, hint)
	}
	return &Error{
		Kind:     KindInvalidURL,
		Platform: platform,
		Message:  msg,
		Err:      fmt.Errorf("cannot extract identifier from %q", raw),
	}
}

// parseHTTPURL parses raw and checks it is an absolute http(s) URL
func parseHTTPURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Host == "" {
		return nil, false
	}
	return u, true
}

// hostMatches reports whether host equals domain or is one of its subdomains
func hostMatches(host string, domains ...string) bool {
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// ExtractInstagramShortcode returns the short code following /p/ or /reel/
func ExtractInstagramShortcode(raw string) (string, error) {
	u, ok := parseHTTPURL(raw)
	if !ok || !hostMatches(u.Host, "instagram.com", "instagr.am") {
		return "", invalidURL(PlatformInstagram, raw, "")
	}

	match := instagramPathPattern.FindStringSubmatch(u.Path)
	if match == nil {
		return "", invalidURL(PlatformInstagram, raw, "")
	}
	return match[1], nil
}

// ExtractFacebookPostID returns the numeric post or video ID. The first of
// posts/<id>, videos/<id> and /<id> that matches wins.
func ExtractFacebookPostID(raw string) (string, error) {
	u, ok := parseHTTPURL(raw)
	if !ok || !hostMatches(u.Host, "facebook.com", "fb.watch", "fb.com") {
		return "", invalidURL(PlatformFacebook, raw, "")
	}

	for _, pattern := range facebookPathPatterns {
		if match := pattern.FindStringSubmatch(u.Path); match != nil {
			return match[1], nil
		}
	}

	// watch/?v=<id> and story.php?story_fbid=<id>
	query := u.Query()
	for _, key := range []string{"v", "story_fbid"} {
		if id := query.Get(key); facebookIDPattern.MatchString(id) {
			return id, nil
		}
	}

	return "", invalidURL(PlatformFacebook, raw, "")
}

// CleanYouTubeURL strips every query parameter except v from watch URLs and
// all query parameters from other YouTube URLs. The fragment is dropped too.
func CleanYouTubeURL(raw string) (string, error) {
	u, ok := parseHTTPURL(raw)
	if !ok {
		return "", invalidURL(PlatformYouTube, raw, youtubeHint)
	}

	query := url.Values{}
	if hostMatches(u.Host, "youtube.com") && u.Path == "/watch" {
		if v := u.Query().Get("v"); v != "" {
			query.Set("v", v)
		}
	}
	u.RawQuery = query.Encode()
	u.Fragment = ""
	return u.String(), nil
}

const youtubeHint = "Please use a URL like https://www.youtube.com/watch?v=<video_id> or https://youtu.be/<video_id>"

// ExtractYouTubeVideoID returns the v parameter of a watch URL or the path
// segment of a youtu.be short link
func ExtractYouTubeVideoID(raw string) (string, error) {
	cleaned, err := CleanYouTubeURL(raw)
	if err != nil {
		return "", err
	}
	u, _ := url.Parse(cleaned)

	var id string
	switch {
	case hostMatches(u.Host, "youtube.com") && u.Path == "/watch":
		id = u.Query().Get("v")
	case hostMatches(u.Host, "youtu.be"):
		id, _, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	}

	if !youtubeIDPattern.MatchString(id) {
		return "", invalidURL(PlatformYouTube, raw, youtubeHint)
	}
	return id, nil
}

// YouTubeWatchURL builds the canonical watch URL for a video ID
func YouTubeWatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}

// ExtractIdentifier dispatches to the platform extractor
func ExtractIdentifier(platform Platform, raw string) (string, error) {
	switch platform {
	case PlatformInstagram:
		return ExtractInstagramShortcode(raw)
	case PlatformFacebook:
		return ExtractFacebookPostID(raw)
	case PlatformYouTube:
		return ExtractYouTubeVideoID(raw)
	default:
		return "", fmt.Errorf("unsupported platform: %s", platform)
	}
}

// ValidateIdentifier checks an identifier received on a download path
func ValidateIdentifier(platform Platform, id string) error {
	var pattern *regexp.Regexp
	switch platform {
	case PlatformInstagram:
		pattern = instagramIDPattern
	case PlatformFacebook:
		pattern = facebookIDPattern
	case PlatformYouTube:
		pattern = youtubeIDPattern
	default:
		return fmt.Errorf("unsupported platform: %s", platform)
	}
	if !pattern.MatchString(id) {
		return &Error{
			Kind:       KindInvalidURL,
			Platform:   platform,
			Identifier: id,
			Message:    fmt.Sprintf("Invalid %s identifier", platform.DisplayName()),
		}
	}
	return nil
}
