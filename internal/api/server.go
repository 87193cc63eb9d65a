package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JartiX/Irk-media-monitoring/internal/logger"
)

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// Config holds HTTP server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080". Empty disables the server.
	Addr string `env:"API_ADDR" yaml:"addr"`
	// Debug enables gin debug mode and verbose request logs.
	Debug bool `yaml:"debug"`
}

// Server wraps the HTTP server around the gin router.
type Server struct {
	srv    *http.Server
	logger logger.Logger
}

// NewServer builds the router and server. Returns nil when no listen
// address is configured.
func NewServer(cfg Config, handler *Handler, log logger.Logger) *Server {
	if cfg.Addr == "" {
		return nil
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, handler)

	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		logger: log,
	}
}

// Start serves until Shutdown is called. A nil server is a no-op.
func (s *Server) Start() {
	if s == nil {
		return
	}
	s.logger.Info("http server listening", logger.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("http server failed", logger.Error(err))
	}
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
