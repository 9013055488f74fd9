package status

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/batchkit/batch"
	"github.com/kbukum/batchkit/component"
	"github.com/kbukum/batchkit/logger"
	"github.com/kbukum/batchkit/progress"
)

// Pipeline is anything that can report batch counters; every *batch.Provider does.
type Pipeline interface {
	Stats() batch.Stats
}

// HealthChecker reports the health of the services around the run.
type HealthChecker func(ctx context.Context) []component.Health

// Server exposes pipeline progress over HTTP. It is a component.Component.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	log        *logger.Logger

	mu       sync.RWMutex
	tracker  *progress.Tracker
	pipeline Pipeline
	checker  HealthChecker
	listener net.Listener
}

var _ component.Component = (*Server)(nil)

// New builds a server listening on addr. Nothing is bound until Start.
func New(addr string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine: gin.New(),
		log:    log.WithComponent("status"),
	}
	s.engine.Use(recovery(s.log), requestID(), requestLogger(s.log))
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/progress", s.progress)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(s.engine, &http2.Server{IdleTimeout: 120 * time.Second}),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Attach points the server at a new run. Either argument may be nil.
func (s *Server) Attach(p Pipeline, t *progress.Tracker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipeline = p
	s.tracker = t
}

// SetHealthChecker makes /healthz include component reports.
func (s *Server) SetHealthChecker(hc HealthChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checker = hc
}

// Name identifies the server in a component.Registry.
func (s *Server) Name() string { return "status" }

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start binds the listener and serves in the background. It returns once the
// port is bound.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("status server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("status server stopped", logger.ErrorFields("serve", err))
		}
	}()
	s.log.Info("status server listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Stop stops accepting requests and waits for in-flight ones until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
	s.log.Debug("status server stopped")
	return nil
}

// Health reports healthy while the listener is bound.
func (s *Server) Health(context.Context) component.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy, Message: s.listener.Addr().String()}
}
