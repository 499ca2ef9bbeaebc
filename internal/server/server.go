/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/hugin_playout/internal/api"
	"github.com/friendsincode/hugin_playout/internal/catalog"
	"github.com/friendsincode/hugin_playout/internal/config"
	"github.com/friendsincode/hugin_playout/internal/db"
	"github.com/friendsincode/hugin_playout/internal/schedule"
	"github.com/friendsincode/hugin_playout/internal/scheduler"
	"github.com/friendsincode/hugin_playout/internal/telemetry"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server

	db        *gorm.DB
	api       *api.API
	catalog   *catalog.Service
	schedule  *schedule.Service
	scheduler *scheduler.Service
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	conn, err := db.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, err
	}

	catalogSvc := catalog.NewService(conn, logger)
	scheduleSvc := schedule.NewService(conn, logger)
	schedulerSvc := scheduler.New(conn, catalogSvc, scheduleSvc, scheduler.Options{
		FrameRate:     cfg.FrameRate,
		MaxIterations: cfg.FillMaxIterations,
	}, logger)

	srv := &Server{
		cfg:       cfg,
		logger:    logger.With().Str("component", "server").Logger(),
		db:        conn,
		catalog:   catalogSvc,
		schedule:  scheduleSvc,
		scheduler: schedulerSvc,
		api:       api.New(conn, catalogSvc, scheduleSvc, schedulerSvc, logger),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	if cfg.MetricsEnabled {
		router.Use(telemetry.MetricsMiddleware)
		router.Handle("/metrics", telemetry.Handler())
	}
	srv.api.Routes(router)
	srv.router = router

	srv.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// HTTPServer exposes the configured http.Server for the caller to run.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Close releases held resources.
func (s *Server) Close() error {
	return db.Close(s.db)
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
