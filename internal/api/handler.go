package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"return-adjudicator/internal/engine"
	"return-adjudicator/internal/service"
	"return-adjudicator/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	adjudicationService *service.AdjudicationService
}

// NewHandler creates a new HTTP handler
func NewHandler(adjudicationService *service.AdjudicationService) *Handler {
	return &Handler{
		adjudicationService: adjudicationService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/adjudications", h.adjudicate)
		v1.GET("/adjudications/:order_id", h.getAdjudication)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// adjudicate decides one return request synchronously. Denials and reviews
// are 200s; only malformed input or a missing snapshot is an error status.
func (h *Handler) adjudicate(c *gin.Context) {
	var req service.AdjudicateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := h.adjudicationService.Adjudicate(c.Request.Context(), &req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrNoItems) || errors.Is(err, engine.ErrInvalidItem) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error":   "Failed to adjudicate request",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// getAdjudication returns the latest persisted decision for an order
func (h *Handler) getAdjudication(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing order ID",
		})
		return
	}

	result, err := h.adjudicationService.GetAdjudication(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Adjudication not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
