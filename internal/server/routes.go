package server

import (
	"net"
	"net/http"

	_ "go-excelproc/docs"
	"go-excelproc/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Only allow requests from localhost to /swagger/*
func localhostOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, _ := net.SplitHostPort(r.RemoteAddr)
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RegisterRoutes returns the handler serving the page, the form endpoints,
// the job API, static assets and the API docs.
func (s *Server) RegisterRoutes() http.Handler {
	if s.log == nil {
		s.log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.With(localhostOnly).Get("/swagger/*", httpSwagger.WrapHandler)

	h := handlers.NewAPIHandler(s.Jobs, s.UploadDir, s.log)
	h.WASM = s.hasWASM()

	r.Get("/", h.Index)
	r.Post("/upload", h.Upload)
	r.Post("/records", h.SubmitRecord)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", h.Health)
		api.Get("/jobs", h.ListJobs)
		api.Get("/jobs/{jobID}", h.GetJob)
	})

	if s.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.StaticDir))))
	}

	return r
}
