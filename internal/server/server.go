// Package server exposes article generation over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/amishk599/jobpress/internal/model"
	"github.com/amishk599/jobpress/internal/pipeline"
)

// Generator is the part of *pipeline.Pipeline the API needs.
type Generator interface {
	Generate(ctx context.Context, job model.JobDescriptor) (*model.Document, error)
	Layouts() []*pipeline.Layout
	DefaultLayout() string
}

// Options configures the API.
type Options struct {
	CORSOrigins    []string      // empty allows all origins
	RequestTimeout time.Duration // per generate request, 0 means none
	MaxBodyBytes   int64
}

// Server wires the HTTP routes to a generator and an archive.
type Server struct {
	gen     Generator
	archive model.ArticleStore
	opts    Options
	logger  *slog.Logger
	router  *gin.Engine
}

// New builds the router. Call gin.SetMode before New to change gin's mode.
func New(gen Generator, archive model.ArticleStore, opts Options, logger *slog.Logger) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	s := &Server{gen: gen, archive: archive, opts: opts, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	corsCfg := cors.DefaultConfig()
	if len(opts.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.CORSOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.health)
		api.GET("/layouts", s.listLayouts)

		api.POST("/articles", s.createArticle)
		api.GET("/articles", s.listArticles)
		api.GET("/articles/:id", s.getArticle)
	}

	s.router = r
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}
}
