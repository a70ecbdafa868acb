// Package server provides the HTTP server setup for go-excelproc.
//
// NewServer creates and configures the HTTP server, the upload directory and
// the job janitor.
//
// Expected outputs:
// - Server listens on the configured port (default 8080)
// - Finished jobs older than the configured TTL are dropped periodically
//
// Usage:
//
//	srv := server.NewServer(ctx, cfg, jobManager, log)
//	srv.ListenAndServe()
//
// See internal/server/routes.go for route registration.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go-excelproc/internal/config"
	"go-excelproc/internal/jobs"

	"go.uber.org/zap"
)

type Server struct {
	port      int
	Jobs      *jobs.Manager
	UploadDir string
	StaticDir string
	log       *zap.Logger
}

// NewServer builds the http.Server. The janitor stops when ctx is done.
func NewServer(ctx context.Context, cfg *config.Config, jm *jobs.Manager, log *zap.Logger) *http.Server {
	if err := os.MkdirAll(cfg.Storage.UploadDir, 0755); err != nil {
		log.Warn("create upload dir", zap.String("dir", cfg.Storage.UploadDir), zap.Error(err))
	}

	srv := &Server{
		port:      cfg.Server.Port,
		Jobs:      jm,
		UploadDir: cfg.Storage.UploadDir,
		StaticDir: cfg.Storage.StaticDir,
		log:       log,
	}

	if !srv.hasWASM() {
		log.Warn("form controller not built, run go generate ./internal/server",
			zap.String("dir", srv.StaticDir))
	}

	go jm.RunJanitor(ctx, cfg.Jobs.CleanupInterval, cfg.Jobs.TTL)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", srv.port),
		Handler:      srv.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
