package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// MediaService runs the metadata and download workflows for every platform
type MediaService struct {
	sources  map[domain.Platform]domain.Source
	retriers map[domain.Platform]*Retrier
	stager   *Stager
	cleanup  *CleanupCoordinator
	logger   *zap.Logger
}

// NewMediaService creates a media service. Each source gets a retrier built
// from its entry in retry; platforms without an entry get a single attempt.
func NewMediaService(
	sources []domain.Source,
	retry map[domain.Platform]domain.RetryConfig,
	stager *Stager,
	cleanup *CleanupCoordinator,
	logger *zap.Logger,
) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &MediaService{
		sources:  make(map[domain.Platform]domain.Source),
		retriers: make(map[domain.Platform]*Retrier),
		stager:   stager,
		cleanup:  cleanup,
		logger:   logger,
	}
	for _, src := range sources {
		platform := src.Platform()
		s.sources[platform] = src
		s.retriers[platform] = NewRetrier(retry[platform], logger)
	}
	return s
}

// Cleanup returns the coordinator that releases staged files
func (s *MediaService) Cleanup() *CleanupCoordinator {
	return s.cleanup
}

// source looks up the integration for a platform
func (s *MediaService) source(platform domain.Platform) (domain.Source, error) {
	src, ok := s.sources[platform]
	if !ok {
		return nil, &domain.Error{
			Kind:     domain.KindNotFound,
			Platform: platform,
			Message:  fmt.Sprintf("Unsupported platform: %s", platform),
		}
	}
	return src, nil
}

// contentTypeFor parses a declared type and checks the platform accepts it
func contentTypeFor(src domain.Source, raw string, required bool) (domain.ContentType, error) {
	ct, err := domain.ParseContentType(raw)
	if err == nil && ct == "" && required {
		err = fmt.Errorf("content type is required")
	}
	if err == nil && ct != "" && !domain.Supports(src, ct) {
		err = fmt.Errorf("%s does not serve %s content", src.Platform(), ct)
	}
	if err != nil {
		return "", &domain.Error{
			Kind:     domain.KindUnsupportedContentType,
			Platform: src.Platform(),
			Message:  fmt.Sprintf("Unsupported content type: %s", raw),
			Err:      err,
		}
	}
	return ct, nil
}

// fetch resolves the post descriptor through the platform's retrier
func (s *MediaService) fetch(ctx context.Context, src domain.Source, ref domain.ContentReference) (*domain.Post, error) {
	var post *domain.Post
	err := s.retriers[ref.Platform].Do(ctx, ref, "fetch", func(ctx context.Context) error {
		var err error
		post, err = src.Fetch(ctx, ref)
		return err
	})
	if err != nil {
		return nil, withRef(err, ref)
	}
	return post, nil
}

// withRef attaches platform and identifier to typed errors
func withRef(err error, ref domain.ContentReference) error {
	if derr, ok := domain.AsError(err); ok {
		derr.WithRef(ref)
		return err
	}
	return domain.Unknown(err).WithRef(ref)
}

// assembleSupported builds the metadata record and rejects an inferred type
// the platform cannot download, so every returned download_url resolves
func assembleSupported(src domain.Source, ref domain.ContentReference, post *domain.Post) (*domain.MetadataRecord, error) {
	record, err := AssembleMetadata(ref, post)
	if err != nil {
		return nil, err
	}
	if ref.ContentType == "" && !domain.Supports(src, record.Type) {
		return nil, mismatch(ref, src.SupportedTypes()[0], post)
	}
	return record, nil
}

// Metadata extracts the identifier from rawURL, fetches the post and
// assembles the normalized metadata record. An empty content type is
// inferred from the post.
func (s *MediaService) Metadata(ctx context.Context, platform domain.Platform, rawURL, contentType string) (*domain.MetadataRecord, error) {
	src, err := s.source(platform)
	if err != nil {
		return nil, err
	}

	identifier, err := src.Extract(rawURL)
	if err != nil {
		s.logger.Warn("Rejected URL", zap.String("platform", string(platform)), zap.String("url", rawURL), zap.Error(err))
		return nil, err
	}

	ct, err := contentTypeFor(src, contentType, false)
	if err != nil {
		return nil, err
	}

	ref := domain.ContentReference{Platform: platform, Identifier: identifier, ContentType: ct}
	s.logger.Debug("Extracted identifier", zap.String("platform", string(platform)), zap.String("identifier", identifier))

	post, err := s.fetch(ctx, src, ref)
	if err != nil {
		return nil, err
	}

	record, err := assembleSupported(src, ref, post)
	if err != nil {
		s.logger.Warn("Content type mismatch",
			zap.String("platform", string(platform)),
			zap.String("identifier", identifier),
			zap.String("declared", string(ct)))
		return nil, err
	}

	s.logger.Info("Metadata prepared",
		zap.String("platform", string(platform)),
		zap.String("identifier", identifier),
		zap.String("type", string(record.Type)))
	return record, nil
}

// Download re-resolves the post, stages its media in the download area and
// returns the final file. The caller must hand the result to Cleanup().Release
// once it has been streamed. On failure nothing is left on disk.
func (s *MediaService) Download(ctx context.Context, platform domain.Platform, identifier, contentType, quality string) (*domain.StagedFile, error) {
	src, err := s.source(platform)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateIdentifier(platform, identifier); err != nil {
		return nil, err
	}
	ct, err := contentTypeFor(src, contentType, true)
	if err != nil {
		return nil, err
	}
	ref := domain.ContentReference{Platform: platform, Identifier: identifier, ContentType: ct}

	var scratch string
	if src.StagingMode() == domain.StageScratch {
		if scratch, err = s.stager.NewScratch(identifier); err != nil {
			return nil, withRef(err, ref)
		}
	}

	filename, finalPath := s.stager.FinalPath(ref)
	staged := false
	defer func() {
		if !staged {
			s.cleanup.RemoveFile(finalPath)
			s.cleanup.RemoveScratch(scratch)
		}
	}()

	post, err := s.fetch(ctx, src, ref)
	if err != nil {
		return nil, err
	}
	if _, err := ResolveContentType(ref, post); err != nil {
		return nil, err
	}

	req := domain.StageRequest{
		Ref:        ref,
		Post:       post,
		Quality:    quality,
		ScratchDir: scratch,
		TargetPath: finalPath,
	}
	err = s.retriers[platform].Do(ctx, ref, "download", func(ctx context.Context) error {
		return src.Stage(ctx, req)
	})
	if err != nil {
		return nil, withRef(err, ref)
	}

	if scratch != "" {
		output, err := SelectOutput(scratch, ct.Extension())
		if err != nil {
			s.logger.Error("Expected output missing",
				zap.String("platform", string(platform)),
				zap.String("identifier", identifier),
				zap.String("scratch_dir", scratch),
				zap.Error(err))
			return nil, withRef(err, ref)
		}
		if err := Promote(output, finalPath); err != nil {
			return nil, withRef(err, ref)
		}
	}

	staged = true
	s.logger.Info("Prepared file for download",
		zap.String("platform", string(platform)),
		zap.String("identifier", identifier),
		zap.String("file", filename))

	return &domain.StagedFile{Path: finalPath, Filename: filename, ScratchDir: scratch}, nil
}
