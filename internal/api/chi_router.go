// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/soundprint/internal/middleware"
	"github.com/tomtom215/soundprint/internal/models"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// Setup builds the HTTP handler tree.
func (router *Router) Setup() (http.Handler, error) {
	compress, err := middleware.Compression(middleware.DefaultCompressionMinSize)
	if err != nil {
		return nil, fmt.Errorf("compression middleware: %w", err)
	}
	h := router.handler
	mw := router.chiMiddleware

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(compress)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondAPIError(w, http.StatusNotFound, &models.APIError{
			Code: models.ErrCodeNotFound, Message: "Not found",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondAPIError(w, http.StatusMethodNotAllowed, &models.APIError{
			Code: models.ErrCodeMethodNotAllowed, Message: "Method not allowed",
		})
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/dataset", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.With(mw.RateLimit()).Get("/status", h.DatasetStatus)
		r.With(mw.RateLimitCustom(RateLimitAdmin)).Post("/rebuild", h.DatasetRebuild)
	})

	r.Route("/api/v1/taste", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Post("/match", h.TasteMatch)
		r.Post("/stats", h.TasteStats)
		r.Post("/recommendations", h.TasteRecommendations)
		r.Post("/insights", h.TasteInsights)
	})

	if h.music != nil {
		r.Route("/api/v1/me", func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(APISecurityHeaders())
			r.Use(middleware.PrometheusMetrics)
			r.Get("/", h.Me)
			r.Get("/stats", h.MeStats)
			r.Get("/recommendations", h.MeRecommendations)
			r.Get("/insights", h.MeInsights)
		})
	}

	r.Handle("/metrics", promhttp.Handler())
	return r, nil
}
