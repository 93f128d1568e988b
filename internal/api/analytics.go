package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omnipulse/omnipulse/internal/models"
	"github.com/omnipulse/omnipulse/internal/shared"
)

// recordSession handles POST /api/v1/sessions
//
// Ingestion failures are loud: a 503 tells the webhook worker the session was
// not applied and must be retried or dead-lettered.
func (s *Server) recordSession(c *gin.Context) {
	var summary models.SessionSummary
	if err := c.ShouldBindJSON(&summary); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid session summary: "+err.Error())
		return
	}

	if err := s.recorder.RecordSession(c.Request.Context(), &summary); err != nil {
		if errors.Is(err, shared.ErrStorageUnavailable) {
			s.errorResponse(c, http.StatusServiceUnavailable, "Session not recorded: "+err.Error())
			return
		}
		s.errorResponse(c, http.StatusBadRequest, "Session rejected: "+err.Error())
		return
	}

	s.successResponse(c, gin.H{"recorded": true})
}

// getStats handles GET /api/v1/stats
func (s *Server) getStats(c *gin.Context) {
	payload, err := s.dashboard.GetStats(c.Request.Context())
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to get stats: "+err.Error())
		return
	}

	s.successResponse(c, payload)
}

// getToday handles GET /api/v1/stats/today using the denormalized snapshot,
// so clients do not need to know the server's current day key.
func (s *Server) getToday(c *gin.Context) {
	snap, err := s.recorder.Today(c.Request.Context())
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to get today's snapshot: "+err.Error())
		return
	}
	if snap == nil {
		s.errorResponse(c, http.StatusNotFound, "No sessions recorded yet")
		return
	}

	s.successResponse(c, snap)
}

// getLeadInsights handles GET /api/v1/insights
//
// A partial result is still a 200; the response flags which scans failed so
// the UI can grey out those groups.
func (s *Server) getLeadInsights(c *gin.Context) {
	payload, err := s.insights.GetLeadInsights(c.Request.Context())
	if err != nil {
		var partial *shared.PartialDataError
		if errors.As(err, &partial) {
			c.JSON(http.StatusOK, gin.H{
				"success":      true,
				"data":         payload,
				"partial":      true,
				"failed_scans": partial.Scans,
			})
			return
		}
		s.errorResponse(c, http.StatusInternalServerError, "Failed to get lead insights: "+err.Error())
		return
	}

	s.successResponse(c, payload)
}

// healthCheck handles GET /api/v1/health
func (s *Server) healthCheck(c *gin.Context) {
	if err := s.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.APIResponse{
			Success: false,
			Error:   "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now(),
			"version":   "1.0.0",
		},
	})
}
