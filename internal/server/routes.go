package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no limits)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Ingress (rate limited per IP)
	s.echo.POST("/chatrooms/:room/messages", s.handleSubmitMessage, s.publisher.middleware())
	s.echo.GET("/chatrooms", s.handleListRooms)

	// Admin
	s.echo.POST("/admin/broadcast", s.handleBroadcast, s.publisher.middleware())
	s.echo.GET("/admin/metrics", s.handleAdminMetrics)
	s.echo.GET("/admin/mood_analysis", s.handleMoodAnalysis)
	s.echo.GET("/admin/safety_analysis", s.handleSafetyAnalysis)

	// Client WebSocket (connection limited, not rate limited per request)
	s.echo.GET("/ws", s.handleWebSocket)
}
