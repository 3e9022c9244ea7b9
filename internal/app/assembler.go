package app

import (
	"fmt"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// DefaultQualities is the declared quality list attached to video metadata.
// It is a capability list, not probed from the source.
var DefaultQualities = []string{"360p", "480p", "720p"}

// YouTubeQualities is the wider list offered for YouTube videos
var YouTubeQualities = []string{"144p", "240p", "360p", "480p", "720p", "1080p"}

// ResolveContentType checks the declared type against the actual media kind.
// An empty declared type is inferred from the post.
func ResolveContentType(ref domain.ContentReference, post *domain.Post) (domain.ContentType, error) {
	declared := ref.ContentType
	if declared == "" {
		return inferContentType(ref.Platform, post), nil
	}

	if declared.IsVideo() && !post.IsVideo {
		return "", mismatch(ref, declared, post)
	}
	if !declared.IsVideo() && post.IsVideo {
		return "", mismatch(ref, declared, post)
	}
	return declared, nil
}

// inferContentType picks the platform's name for the actual media kind
func inferContentType(platform domain.Platform, post *domain.Post) domain.ContentType {
	if !post.IsVideo {
		return domain.ContentPhoto
	}
	if platform == domain.PlatformInstagram {
		return domain.ContentReel
	}
	return domain.ContentVideo
}

// mismatch builds the ContentTypeMismatch error with a hint about the actual type
func mismatch(ref domain.ContentReference, declared domain.ContentType, post *domain.Post) *domain.Error {
	actual := inferContentType(ref.Platform, post)

	var msg string
	if ref.Platform == domain.PlatformInstagram {
		msg = fmt.Sprintf("This URL points to a %s, not a %s. Please select %s as the content type.", actual, declared, actual)
	} else if !post.IsVideo {
		msg = "This URL does not point to a video"
	} else {
		msg = fmt.Sprintf("This URL points to a %s, not a %s.", actual, declared)
	}

	return &domain.Error{
		Kind:       domain.KindContentTypeMismatch,
		Platform:   ref.Platform,
		Identifier: ref.Identifier,
		Message:    msg,
	}
}

// AssembleMetadata converts a post descriptor into the record returned to callers
func AssembleMetadata(ref domain.ContentReference, post *domain.Post) (*domain.MetadataRecord, error) {
	contentType, err := ResolveContentType(ref, post)
	if err != nil {
		return nil, err
	}
	ref.ContentType = contentType

	record := &domain.MetadataRecord{
		Type:        contentType,
		Thumbnail:   thumbnailFor(contentType, post),
		Description: descriptionFor(ref.Platform, post),
		DownloadURL: ref.DownloadReference(),
	}

	if contentType.IsVideo() {
		duration := domain.NotApplicable
		if post.IsVideo && post.Duration > 0 {
			duration = domain.DurationFromSeconds(post.Duration)
		}
		record.Duration = &duration

		record.Qualities = DefaultQualities
		if ref.Platform == domain.PlatformYouTube {
			record.Qualities = YouTubeQualities
		}
	}

	return record, nil
}

// thumbnailFor selects the preview image. Photo carousels use their first
// non-video item; Instagram reels expose the video URL as the preview.
func thumbnailFor(contentType domain.ContentType, post *domain.Post) string {
	if contentType == domain.ContentPhoto && post.IsSidecar() {
		for _, item := range post.Items {
			if !item.IsVideo {
				return item.DisplayURL
			}
		}
	}
	if contentType.IsVideo() {
		if post.Thumbnail != "" {
			return post.Thumbnail
		}
		if post.VideoURL != "" {
			return post.VideoURL
		}
	}
	if post.DisplayURL != "" {
		return post.DisplayURL
	}
	return post.Thumbnail
}

// descriptionFor returns the caption or title with the platform's fallback text
func descriptionFor(platform domain.Platform, post *domain.Post) string {
	switch platform {
	case domain.PlatformYouTube:
		if post.Title != "" {
			return post.Title
		}
		return "No title available"
	case domain.PlatformFacebook:
		if post.Caption != "" {
			return post.Caption
		}
		return "No description available"
	default:
		if post.Caption != "" {
			return post.Caption
		}
		return "No caption available"
	}
}
