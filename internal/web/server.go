package web

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dyike/RedditLens/internal/agent"
)

//go:embed static/index.html
var staticFiles embed.FS

// Asker answers one prompt, batched or streamed.
type Asker interface {
	Run(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string, onDelta agent.DeltaFunc) (string, error)
}

// Server is the browser front end.
type Server struct {
	engine *gin.Engine
}

func NewServer(asker Asker) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	h := NewAskHandler(asker)
	r.GET("/", index)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/ask", h.Ask)
	r.GET("/api/ask/stream", h.Stream)

	return &Server{engine: r}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func index(c *gin.Context) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "index not found")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}
