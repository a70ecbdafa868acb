// Package main API.
//
// go-excelproc accepts Excel workbooks and processes their rows in the
// background, one browser session per record.
//
//	Schemes: http
//	BasePath: /
//	Version: 1.0.0
//	Host: localhost:8080
//
//	Consumes:
//	- multipart/form-data
//	- application/x-www-form-urlencoded
//
//	Produces:
//	- text/html
//	- application/json
//
// swagger:meta
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go-excelproc/internal/automation"
	"go-excelproc/internal/config"
	"go-excelproc/internal/jobs"
	"go-excelproc/internal/logger"
	"go-excelproc/internal/server"

	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, stopJobs context.CancelFunc, jm *jobs.Manager, done chan bool, cleanupFunc func()) {
	log := logger.Get()

	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// Running jobs stop between records; the janitor stops too.
	stopJobs()
	jm.Wait()

	if cleanupFunc != nil {
		log.Info("cleaning upload directory")
		cleanupFunc()
	}

	log.Info("server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func cleanupUploads(dir string) func() {
	return func() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				_ = os.Remove(filepath.Join(dir, entry.Name()))
			}
		}
	}
}

func newProcessor(cfg *config.Config, log *zap.Logger) (jobs.Processor, error) {
	if cfg.Automation.Script == "" {
		log.Info("no automation script configured, records are only logged")
		return automation.NewDryRun(log), nil
	}
	script, err := automation.LoadScript(cfg.Automation.Script)
	if err != nil {
		return nil, err
	}
	log.Info("automation script loaded",
		zap.String("script", cfg.Automation.Script),
		zap.Int("steps", len(script.Steps)),
		zap.Bool("headless", cfg.Automation.Headless))
	return automation.NewRunner(script, cfg.Automation.Headless, log), nil
}

func main() {
	cfg := config.Load()
	if err := logger.Init(cfg.Logger.Level); err != nil {
		panic(fmt.Sprintf("logger init: %s", err))
	}
	defer logger.Sync()
	log := logger.Get()

	cleanup := cleanupUploads(cfg.Storage.UploadDir)
	// Cleanup uploads/ on startup
	cleanup()

	processor, err := newProcessor(cfg, log)
	if err != nil {
		log.Fatal("load automation script", zap.Error(err))
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	jm := jobs.NewManager(jobsCtx, processor, log)

	log.Info("starting server", zap.Int("port", cfg.Server.Port))
	srv := server.NewServer(jobsCtx, cfg, jm, log)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, stopJobs, jm, done, cleanup)

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("graceful shutdown complete")
}
