package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CreateCORSMiddleware creates a CORS middleware based on configuration.
// Returns nil if CORS is disabled or no origins are configured.
//
// CORS is disabled by default: the server is a server-to-server API and
// browser clients are the exception, not the rule.
func CreateCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured - CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled",
		slog.Int("origin_count", len(origins)),
		slog.Any("origins", origins))

	config := cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type"},
		ExposeHeaders: []string{
			"X-Request-Id",
		},
		MaxAge: 12 * time.Hour,
	}

	return cors.New(config)
}

// parseOrigins parses a comma-separated origin list and trims whitespace.
func parseOrigins(originsStr string) []string {
	if originsStr == "" {
		return nil
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
