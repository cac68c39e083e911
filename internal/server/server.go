package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ryan-gang/smtp-to-kindle/internal/kindle"
	"github.com/ryan-gang/smtp-to-kindle/internal/logger"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
)

// Deliverer is the component the server exposes
type Deliverer interface {
	Deliver(ctx context.Context, req kindle.Request) kindle.Result
}

// Server exposes the component as an HTTP tool endpoint
type Server struct {
	router    *gin.Engine
	deliverer Deliverer
	logger    logger.LoggerInterface
	http      *http.Server
}

type deliveryResponse struct {
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

type schemaResponse struct {
	Inputs  []kindle.Input  `json:"inputs"`
	Outputs []kindle.Output `json:"outputs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates and configures a new HTTP server
func NewServer(deliverer Deliverer, log logger.LoggerInterface) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:    router,
		deliverer: deliverer,
		logger:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.GET("/inputs", s.getInputs)
		api.POST("/deliveries", s.createDelivery)
	}
}

// Handler returns the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Listening on %s", addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return util.Wrap(util.NetworkError, "serving http", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) getInputs(c *gin.Context) {
	c.JSON(http.StatusOK, schemaResponse{
		Inputs:  kindle.Inputs(),
		Outputs: []kindle.Output{kindle.StatusOutput},
	})
}

func (s *Server) createDelivery(c *gin.Context) {
	var req kindle.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	res := s.deliverer.Deliver(c.Request.Context(), req.WithDefaults())
	c.JSON(statusCode(res), deliveryResponse{StatusMessage: res.Message, Success: res.OK})
}

func statusCode(res kindle.Result) int {
	if res.OK {
		return http.StatusOK
	}
	if res.Category() == util.ValidationError {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}
