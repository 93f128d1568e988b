package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/omnipulse/omnipulse/internal/db"
	"github.com/omnipulse/omnipulse/internal/models"
	"github.com/omnipulse/omnipulse/internal/services"
)

// defaultIngestRPS bounds session ingestion when the config does not set a
// limit; bursts cover webhook fan-in spikes.
const (
	defaultIngestRPS   = 50
	defaultIngestBurst = 100
)

// Server is the REST API server for the analytics engine.
type Server struct {
	db         db.Database
	recorder   *services.RecorderService
	dashboard  *services.DashboardService
	insights   *services.LeadInsightService
	router     *gin.Engine
	corsOrigin string
	limiter    *rate.Limiter
}

// NewServer creates a new API server wired to the given store.
func NewServer(database db.Database, corsOrigin string, ingestRPS float64) *Server {
	if ingestRPS <= 0 {
		ingestRPS = defaultIngestRPS
	}

	s := &Server{
		db:         database,
		recorder:   services.NewRecorderService(database),
		dashboard:  services.NewDashboardService(database),
		insights:   services.NewLeadInsightService(database),
		corsOrigin: corsOrigin,
		limiter:    rate.NewLimiter(rate.Limit(ingestRPS), defaultIngestBurst),
	}

	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.corsMiddleware())
	s.setupRoutes()

	return s
}

// Run starts the HTTP server on the given address.
func (s *Server) Run(address string) error {
	return s.router.Run(address)
}

// Router exposes the gin engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/sessions", s.rateLimitMiddleware(), s.recordSession)
		v1.GET("/stats", s.getStats)
		v1.GET("/stats/today", s.getToday)
		v1.GET("/insights", s.getLeadInsights)
		v1.GET("/health", s.healthCheck)
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	origin := s.corsOrigin
	if origin == "" {
		origin = "*"
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.APIResponse{
				Success: false,
				Error:   "Too many sessions, slow down",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, models.APIResponse{
		Success: false,
		Error:   message,
	})
}
