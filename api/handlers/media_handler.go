package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/clipnest-go/internal/app"
	"github.com/yourusername/clipnest-go/internal/domain"
)

// MediaHandler handles metadata and download requests
type MediaHandler struct {
	service *app.MediaService
	logger  *zap.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(service *app.MediaService, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		service: service,
		logger:  logger,
	}
}

// MetadataRequest represents a metadata request body
type MetadataRequest struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
}

// Metadata handles POST /api/<platform>/metadata
func (h *MediaHandler) Metadata(platform domain.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MetadataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
			return
		}

		// the upstream fetch runs to completion even if the client goes away
		ctx := context.WithoutCancel(c.Request.Context())

		record, err := h.service.Metadata(ctx, platform, strings.TrimSpace(req.URL), req.ContentType)
		if err != nil {
			respondError(c, h.logger, platform, err)
			return
		}

		c.JSON(http.StatusOK, record)
	}
}

// Download handles GET /api/<platform>/download/:id/:contentType?quality=
func (h *MediaHandler) Download(platform domain.Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithoutCancel(c.Request.Context())

		staged, err := h.service.Download(ctx, platform, c.Param("id"), c.Param("contentType"), c.Query("quality"))
		if err != nil {
			respondError(c, h.logger, platform, err)
			return
		}
		defer h.service.Cleanup().Release(staged)

		c.FileAttachment(staged.Path, staged.Filename)
	}
}
