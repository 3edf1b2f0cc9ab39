// Package server exposes video generation over a small HTTP API.
//
// Requests are served one at a time: generation is sequential by nature and
// two requests for the same folder would otherwise write the same output.
package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kataras/golog"

	"github.com/xob0t/GoWipe/pkg/generator"
)

var logger = golog.Child("[server]")

// DefaultAddr listens on loopback only.
const DefaultAddr = "localhost:8080"

// SetLogLevel sets the level of the package logger.
func SetLogLevel(level string) { logger.SetLevel(level) }

// Server handles the HTTP API.
type Server struct {
	cfg generator.Config
	mu  sync.Mutex

	generate func(ctx context.Context, dir string, cfg generator.Config) (*generator.Result, error)
}

// New returns a Server whose requests start from cfg.
func New(cfg generator.Config) *Server {
	return &Server{cfg: cfg, generate: generator.Generate}
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/generate", s.handleGenerate)
	api.GET("/generate/ws", s.handleGenerateWS)
	return r
}

// RunServe listens on addr until the listener fails.
func RunServe(addr string, cfg generator.Config) error {
	gin.SetMode(gin.ReleaseMode)
	s := New(cfg)
	logger.Infof("GoWipe API → http://%s/api", displayAddr(addr))
	return http.ListenAndServe(addr, s.Handler())
}

// displayAddr fills in the host of a port-only address.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

type generateRequest struct {
	Folder string `json:"folder" binding:"required"`
	Format string `json:"format"`
	Output string `json:"output"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: generator.KindInvalidConfig})
		return
	}

	cfg := s.requestConfig(req)

	s.mu.Lock()
	res, err := s.generate(c.Request.Context(), req.Folder, cfg)
	s.mu.Unlock()
	if err != nil {
		kind := generator.Kind(err)
		logger.Warnf("generate %s: %v", req.Folder, err)
		c.JSON(statusFor(kind), errorResponse{Error: err.Error(), Kind: kind})
		return
	}
	c.JSON(http.StatusOK, res)
}

// requestConfig applies the per-request overrides to the server defaults.
func (s *Server) requestConfig(req generateRequest) generator.Config {
	cfg := s.cfg
	if req.Format != "" {
		cfg.Format = generator.Format(req.Format)
	}
	if req.Output != "" {
		cfg.OutputName = req.Output
	}
	return cfg
}

func statusFor(kind string) int {
	switch kind {
	case generator.KindFolderNotFound:
		return http.StatusNotFound
	case generator.KindNoImagesFound, generator.KindUnparseableFilename, generator.KindImageDecodeFailure:
		return http.StatusUnprocessableEntity
	case generator.KindInvalidConfig:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infof("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
