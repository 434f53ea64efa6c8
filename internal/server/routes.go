package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/metrics"
	"github.com/agenthands/cobalt/internal/store"
	"github.com/agenthands/cobalt/internal/taxonomy"
)

// SetupRouter registers the HTTP surface.
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metricsMiddleware())

	r.POST("/analyze", s.handleAnalyze)
	r.POST("/enqueue", s.handleEnqueue)
	r.GET("/analyses/:videoId", s.handleGetAnalysis)
	r.GET("/taxonomy", s.handleGetLatestTaxonomy)
	r.GET("/taxonomy/:version", s.handleGetTaxonomyByVersion)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

type analyzeRequest struct {
	VideoID string `json:"videoId" binding:"required"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "videoId is required"})
		return
	}

	analysis, err := s.AnalyzeAndPersist(c.Request.Context(), req.VideoID)
	if err != nil {
		s.log.Error("analysis failed", zap.String("video_id", req.VideoID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

func (s *Server) handleEnqueue(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "videoId is required"})
		return
	}

	if err := s.Queue.Enqueue(c.Request.Context(), req.VideoID); err != nil {
		s.log.Error("enqueue failed", zap.String("video_id", req.VideoID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"videoId": req.VideoID, "status": "queued"})
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	record, err := s.Analyses.Get(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		s.log.Error("load analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load analysis failed"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleGetLatestTaxonomy(c *gin.Context) {
	doc, err := s.Taxonomies.GetLatest(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no taxonomy stored"})
			return
		}
		s.log.Error("load taxonomy failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load taxonomy failed"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleGetTaxonomyByVersion(c *gin.Context) {
	version, err := taxonomy.ParseVersion(c.Param("version"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed version"})
		return
	}

	doc, err := s.Taxonomies.GetByVersion(c.Request.Context(), version)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "taxonomy version not found"})
			return
		}
		s.log.Error("load taxonomy failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load taxonomy failed"})
		return
	}
	c.JSON(http.StatusOK, doc)
}
