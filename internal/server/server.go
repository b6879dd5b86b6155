package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/texasdave2/chatroom/internal/chat"
	"github.com/texasdave2/chatroom/internal/config"
	apperrors "github.com/texasdave2/chatroom/internal/errors"
	"github.com/texasdave2/chatroom/internal/websocket"
)

// Connection limits per delivery instance. A single slow or abusive source
// must not exhaust the hub.
const (
	maxConnections      = 10000
	maxConnectionsPerIP = 20
	publishRatePerIP    = 10.0
	publishBurstPerIP   = 20
)

// ChatService is the application layer the handlers call into.
type ChatService interface {
	Submit(ctx context.Context, roomID, user, text string) error
	Broadcast(ctx context.Context, user, text string) error
	ListRooms(ctx context.Context) ([]string, error)
	Metrics(ctx context.Context) (chat.MetricsSnapshot, error)
	MoodAnalysis(ctx context.Context) (map[string]map[string]int64, error)
	SafetyAnalysis(ctx context.Context) (map[string]map[string]int64, error)
}

// redisPinger is the minimal interface the readiness check needs.
type redisPinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	chat      ChatService
	hub       *websocket.Hub
	redis     redisPinger
	limits    *connectionLimits
	publisher *ipRateLimiter
	startTime time.Time
}

func NewServer(cfg *config.Config, chatSvc ChatService, hub *websocket.Hub, redisClient redisPinger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		chat:      chatSvc,
		hub:       hub,
		redis:     redisClient,
		limits:    newConnectionLimits(maxConnections, maxConnectionsPerIP),
		publisher: newIPRateLimiter(publishRatePerIP, publishBurstPerIP),
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
