package status

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/batchkit/batch"
	"github.com/kbukum/batchkit/component"
	"github.com/kbukum/batchkit/errors"
	"github.com/kbukum/batchkit/progress"
	"github.com/kbukum/batchkit/version"
)

// ProgressResponse is the body of GET /progress.
type ProgressResponse struct {
	RunID    string             `json:"run_id"`
	Progress *progress.Snapshot `json:"progress,omitempty"`
	Pipeline batch.Stats        `json:"pipeline"`
}

func (s *Server) health(c *gin.Context) {
	s.mu.RLock()
	checker := s.checker
	s.mu.RUnlock()

	var components []component.Health
	if checker != nil {
		components = checker(c.Request.Context())
	}
	overall := component.Overall(components)
	code := http.StatusOK
	if overall == component.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     overall,
		"version":    version.Get().String(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"components": components,
	})
}

func (s *Server) progress(c *gin.Context) {
	s.mu.RLock()
	p, t := s.pipeline, s.tracker
	s.mu.RUnlock()

	if p == nil {
		err := errors.NotFound("pipeline", "current")
		c.JSON(err.HTTPStatus, err.ToResponse())
		return
	}

	stats := p.Stats()
	resp := ProgressResponse{RunID: stats.RunID, Pipeline: stats}
	if t != nil {
		snap := t.Snapshot()
		resp.Progress = &snap
	}
	c.JSON(http.StatusOK, resp)
}
