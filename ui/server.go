package ui

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"veritas/adapters/api"
	"veritas/app"
	"veritas/domain/swarm"
	"veritas/internal/errors"
	"veritas/internal/testkit"
	"veritas/ports"
)

// Server exposes the swarm over HTTP: blocking evaluation, SSE streaming,
// and demo bundles.
type Server struct {
	router  *gin.Engine
	service *app.SwarmService
	run     swarm.RunConfig
}

// NewServer creates the evaluation server around a swarm service
func NewServer(service *app.SwarmService, run swarm.RunConfig, ginMode string) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	s := &Server{
		router:  gin.Default(),
		service: service,
		run:     run,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.POST("/evaluate", s.handleEvaluate)
	s.router.POST("/evaluate/stream", s.handleEvaluateStream)
	s.router.GET("/mock-bundles", s.handleMockBundles)
	s.router.GET("/archetypes", s.handleArchetypes)
}

// Run starts the server on the given port
func (s *Server) Run(port string) error {
	log.Printf("[ui] evaluation server listening on :%s", port)
	return s.router.Run(":" + port)
}

// evaluateRequest optionally overrides the default run configuration
type evaluateRequest struct {
	Bundle        swarm.EvidenceBundle `json:"bundle" binding:"required"`
	MaxIterations *int                 `json:"max_iterations"`
	CommitteeSize *int                 `json:"committee_size"`
	Seed          *int64               `json:"seed"`
}

func (s *Server) runConfigFor(req *evaluateRequest) swarm.RunConfig {
	cfg := s.run
	if req.MaxIterations != nil {
		cfg.MaxIterations = *req.MaxIterations
	}
	if req.CommitteeSize != nil {
		cfg.CommitteeSize = *req.CommitteeSize
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	return cfg
}

// handleEvaluate runs the full loop and returns the final verdict
func (s *Server) handleEvaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verdict, err := s.service.Run(c.Request.Context(), &req.Bundle, s.runConfigFor(&req))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.GetCode(err) == errors.CodeInvalidInput || errors.GetCode(err) == errors.CodeConfigInvalid {
			status = http.StatusBadRequest
		}
		if verdict != nil {
			// Aborted run: partial verdict travels with the failure
			c.JSON(status, gin.H{"error": err.Error(), "verdict": verdict})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, verdict)
}

// streamObserver bridges run events onto a channel consumed by the SSE writer
type streamObserver struct {
	events chan api.SSEEvent
}

func (o *streamObserver) OnSnapshot(snap swarm.IterationSnapshot) {
	o.events <- api.NewSSEEvent(api.EventTypeSnapshot, "", snap)
}

func (o *streamObserver) OnVerdict(verdict *swarm.VerdictDistribution) {
	o.events <- api.NewSSEEvent(api.EventTypeVerdict, verdict.RunID.String(), verdict)
}

// handleEvaluateStream emits one snapshot event per iteration, then exactly
// one verdict event
func (s *Server) handleEvaluateStream(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	obs := &streamObserver{events: make(chan api.SSEEvent, 16)}
	done := make(chan error, 1)
	go func() {
		_, err := s.service.Run(c.Request.Context(), &req.Bundle, s.runConfigFor(&req), obs)
		if err != nil {
			obs.events <- api.NewSSEEvent(api.EventTypeRunFailed, "", gin.H{"error": err.Error()})
		}
		close(obs.events)
		done <- err
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		event, ok := <-obs.events
		if !ok {
			return false
		}
		_, _ = io.WriteString(w, event.ToSSEFormat())
		return true
	})
	<-done
}

// handleMockBundles returns the testkit bundles for demos
func (s *Server) handleMockBundles(c *gin.Context) {
	c.JSON(http.StatusOK, testkit.NewTestKit().Bundles())
}

// handleArchetypes returns the sampling pool
func (s *Server) handleArchetypes(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Pool())
}

var _ ports.RunObserver = (*streamObserver)(nil)
