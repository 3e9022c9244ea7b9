package domain

import "context"

// Source defines the interface for platform-specific integrations
type Source interface {
	// Platform returns the platform this source handles
	Platform() Platform

	// Extract parses a raw URL into the platform content identifier
	Extract(rawURL string) (string, error)

	// Fetch performs one fetch of the post descriptor. Failures are typed
	// as transient, bad request, not found or unknown; retrying is the
	// caller's responsibility.
	Fetch(ctx context.Context, ref ContentReference) (*Post, error)

	// Stage writes the media bytes for a resolved post into the request's
	// staging location (TargetPath or ScratchDir, per StagingMode)
	Stage(ctx context.Context, req StageRequest) error

	// StagingMode declares how Stage writes its output
	StagingMode() StagingMode

	// SupportedTypes lists the declared content types this platform accepts
	SupportedTypes() []ContentType
}

// StageRequest carries everything a source needs to download one post
type StageRequest struct {
	Ref     ContentReference
	Post    *Post
	Quality string

	// ScratchDir is the request-owned directory for multi-file outputs
	ScratchDir string

	// TargetPath is where direct single-stream downloads are written
	TargetPath string
}

// StagingMode tells the download manager how a source writes its output
type StagingMode int

const (
	// StageDirect streams straight into the final file; no scratch dir
	StageDirect StagingMode = iota
	// StageScratch writes one or more files into a scratch dir which are
	// then scanned for the expected extension
	StageScratch
)

// Supports reports whether a source accepts the declared content type
func Supports(src Source, ct ContentType) bool {
	for _, t := range src.SupportedTypes() {
		if t == ct {
			return true
		}
	}
	return false
}
