package main

import (
	"log/slog"

	"github.com/JaimeStill/document-center/internal/metrics"
	"github.com/JaimeStill/document-center/pkg/middleware"
)

// buildMiddleware creates the middleware stack. Metrics sits innermost so it
// observes the pattern matched by the mux.
func buildMiddleware(logger *slog.Logger) middleware.System {
	mw := middleware.New()
	mw.Use(middleware.TrimSlash())
	mw.Use(middleware.RequestID())
	mw.Use(middleware.Logger(logger))
	mw.Use(metrics.Middleware)
	return mw
}
