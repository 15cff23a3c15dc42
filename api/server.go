package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"areadata.app/breaker"
	"areadata.app/cache"
	"areadata.app/config"
	"areadata.app/metrics"
	"areadata.app/models"
	apperr "areadata.app/pkg/errors"
	"areadata.app/service"
)

// SnapshotLister reads fetch history for the admin surface.
type SnapshotLister interface {
	ListByUpstream(upstreamID string, limit int) ([]models.SeriesSnapshot, error)
}

// Server represents the HTTP server and API handler
type Server struct {
	router        *gin.Engine
	config        *config.Config
	metricService service.MetricServiceInterface
	breakers      *breaker.Registry
	responses     cache.Cache
	cacheMetrics  *metrics.CacheMetrics
	snapshots     SnapshotLister
}

// NewServer creates and configures a new HTTP server
func NewServer(
	config *config.Config,
	metricService service.MetricServiceInterface,
	breakers *breaker.Registry,
	responses cache.Cache,
	cacheMetrics *metrics.CacheMetrics,
	snapshots SnapshotLister,
) *Server {
	router := gin.Default()

	server := &Server{
		router:        router,
		config:        config,
		metricService: metricService,
		breakers:      breakers,
		responses:     responses,
		cacheMetrics:  cacheMetrics,
		snapshots:     snapshots,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/metrics/:upstream", s.getMetric)
		api.POST("/metrics/batch", s.getMetricBatch)
	}

	admin := s.router.Group("/api/admin")
	{
		admin.GET("/breakers", s.getBreakers)
		admin.POST("/cache/clear", s.clearCache)
		admin.GET("/cache/stats", s.getCacheStats)
		admin.GET("/snapshots", s.getSnapshots)
	}

	s.router.GET("/healthz", s.healthz)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// getMetric serves one normalized metric. Every query parameter is
// forwarded to the upstream client as-is.
func (s *Server) getMetric(c *gin.Context) {
	upstreamID := c.Param("upstream")

	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	slog.Debug("metric request", "upstream", upstreamID, "params", params)
	series, err := s.metricService.FetchMetric(c.Request.Context(), upstreamID, params)
	if err != nil {
		slog.Error("metric request failed", "upstream", upstreamID, "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, series)
}

func (s *Server) getMetricBatch(c *gin.Context) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("batch binding error", "error", err)
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	results := s.metricService.FetchBatch(c.Request.Context(), req.Requests)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) getBreakers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"breakers": s.breakers.Snapshot()})
}

// clearCache drops cached responses. With a prefix only matching keys
// go; without one the whole cache is flushed, stale copies included.
func (s *Server) clearCache(c *gin.Context) {
	prefix := c.Query("prefix")

	if prefix != "" {
		s.responses.ClearPrefix(c.Request.Context(), prefix)
	} else {
		s.responses.Clear(c.Request.Context())
	}

	slog.Info("cache cleared", "prefix", prefix)
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared"})
}

func (s *Server) getCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.cacheMetrics.GetStats())
}

func (s *Server) getSnapshots(c *gin.Context) {
	upstreamID := c.Query("upstream")
	if upstreamID == "" {
		s.handleError(c, apperr.NewValidationError("upstream parameter is required"))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.handleError(c, apperr.NewValidationError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	snapshots, err := s.snapshots.ListByUpstream(upstreamID, limit)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *apperr.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperr.ErrorTypeValidation:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case apperr.ErrorTypeNotFound:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case apperr.ErrorTypeCircuitOpen, apperr.ErrorTypeRetriesExhausted, apperr.ErrorTypeTransient:
			statusCode = http.StatusServiceUnavailable
			message = "Upstream temporarily unavailable"
		case apperr.ErrorTypeNonRetryable, apperr.ErrorTypeNormalization:
			statusCode = http.StatusBadGateway
			message = "Upstream returned an unusable response"
		case apperr.ErrorTypeDatabase:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}
