package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/towebp/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	maxUploadSize int64
	encoderName   string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithMaxUploadSize limits the request body of the conversion endpoint. Zero
// means no limit.
func WithMaxUploadSize(size int64) Option {
	return func(c *config) {
		c.maxUploadSize = size
	}
}

// WithEncoderName sets the encoder name reported by the health check
func WithEncoderName(name string) Option {
	return func(c *config) {
		c.encoderName = name
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	convertUC interfaces.ConvertUseCase,
	archiveUC interfaces.ArchiveUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(SentryMiddleware)
	router.Use(middleware.Recoverer)

	router.Get("/health", healthHandler(cfg.encoderName))

	router.Route("/api", func(r chi.Router) {
		r.Post("/convert", NewConvertHandler(convertUC, cfg.maxUploadSize).Handle)
		r.Post("/downloadAll", NewArchiveHandler(archiveUC).Handle)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
