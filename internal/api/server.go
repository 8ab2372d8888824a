// Package api serves extraction over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mrjoshuak/getbook/internal/render"
	"github.com/mrjoshuak/getbook/types"
)

// DefaultMaxBodyBytes caps the size of an extraction request.
const DefaultMaxBodyBytes = 16 << 20

// Extractor produces a chapter from a URL, fetching the page when html is
// empty.
type Extractor interface {
	Extract(ctx context.Context, pageURL, html string) (*types.Chapter, error)
}

// Server is the HTTP API.
type Server struct {
	router   chi.Router
	ext      Extractor
	renderer *render.Renderer
	log      zerolog.Logger
	maxBody  int64
}

// NewServer creates and configures the HTTP server.
func NewServer(ext Extractor, logger zerolog.Logger) *Server {
	s := &Server{
		ext:      ext,
		renderer: render.New(logger),
		log:      logger,
		maxBody:  DefaultMaxBodyBytes,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/api/extract", s.handleExtract)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
