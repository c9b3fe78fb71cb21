// Package server exposes the popup detection service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qapilothq/Valetudo/internal/annotate"
	"github.com/qapilothq/Valetudo/internal/config"
	"github.com/qapilothq/Valetudo/internal/database"
	"github.com/qapilothq/Valetudo/internal/fetch"
	"github.com/qapilothq/Valetudo/internal/hierarchy"
	"github.com/qapilothq/Valetudo/internal/logger"
)

// Recommender is the reasoning collaborator behind the /invoke flows.
type Recommender interface {
	RecommendFromSummary(ctx context.Context, testcaseDesc, summary string) (*hierarchy.Recommendation, error)
	RecommendFromImage(ctx context.Context, testcaseDesc, encodedImage string) (map[string]any, error)
	RecommendFromAnnotatedImage(ctx context.Context, testcaseDesc, encodedImage string) (*hierarchy.Recommendation, error)
}

type Server struct {
	cfg       *config.Cfg
	log       *logger.Zap
	repo      *database.DetectionRepository // nil when persistence is disabled
	llm       Recommender
	fetcher   *fetch.Client
	annotator *annotate.Annotator
}

func New(cfg *config.Cfg, log *logger.Zap, repo *database.DetectionRepository, llm Recommender) *Server {
	return &Server{
		cfg:       cfg,
		log:       log,
		repo:      repo,
		llm:       llm,
		fetcher:   fetch.New(time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second),
		annotator: annotate.New(cfg.Annotate.DebugDir, log),
	}
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Server.Port,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("HTTP server listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.POST("/invoke", s.handleInvoke)

	r.GET("/api/detections", s.handleListDetections)
	r.GET("/api/detections/:id", s.handleGetDetection)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		s.log.Info("incoming request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Next()
		s.log.Info("completed request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Server) handleListDetections(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "detection history is disabled"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	records, err := s.repo.ListDetections(limit, offset)
	if err != nil {
		s.log.Error("list detections", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detections": records})
}

func (s *Server) handleGetDetection(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "detection history is disabled"})
		return
	}

	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad id"})
		return
	}

	record, err := s.repo.GetDetectionByID(uint(id64))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}
