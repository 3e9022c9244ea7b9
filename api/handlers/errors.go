package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// StatusFor maps a failure to its HTTP status. Connectivity exhaustion is a
// 503 for Instagram and a 500 for the other platforms.
func StatusFor(platform domain.Platform, err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	switch domain.KindOf(err) {
	case domain.KindInvalidURL,
		domain.KindContentTypeMismatch,
		domain.KindUnsupportedContentType,
		domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindNotFound, domain.KindExpectedFileNotFound:
		return http.StatusNotFound
	case domain.KindFetchExhausted:
		if platform == domain.PlatformInstagram {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg} with the mapped status
func respondError(c *gin.Context, log *zap.Logger, platform domain.Platform, err error) {
	status := StatusFor(platform, err)
	fields := []zap.Field{
		zap.String("platform", string(platform)),
		zap.String("kind", string(domain.KindOf(err))),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", fields...)
	} else {
		log.Warn("Request rejected", fields...)
	}
	c.JSON(status, gin.H{"error": domain.PublicMessage(err)})
}
