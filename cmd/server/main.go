package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/texasdave2/chatroom/internal/agent"
	"github.com/texasdave2/chatroom/internal/analysis"
	"github.com/texasdave2/chatroom/internal/chat"
	"github.com/texasdave2/chatroom/internal/config"
	"github.com/texasdave2/chatroom/internal/domain"
	"github.com/texasdave2/chatroom/internal/logging"
	"github.com/texasdave2/chatroom/internal/redis"
	"github.com/texasdave2/chatroom/internal/registry"
	"github.com/texasdave2/chatroom/internal/server"
	"github.com/texasdave2/chatroom/internal/websocket"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Redis unreachable", "error", err)
		os.Exit(1)
	}

	return client
}

// setupAgent wires the classifier/assistant collaborator. Both roles are
// optional: without AGENT_URL analysis falls back to neutral labels and the
// assistant stays silent.
func setupAgent(cfg *config.Config) (domain.Classifier, domain.Responder) {
	if cfg.AgentURL == "" {
		slog.Info("No agent configured, analysis uses fallback labels")
		return nil, nil
	}

	client, err := agent.NewClient(cfg.AgentURL)
	if err != nil {
		slog.Error("Failed to create agent client", "error", err)
		os.Exit(1)
	}
	return client, client
}

func runGracefulShutdown(srv *server.Server, hub *websocket.Hub, subs ...interface{ Close() }) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		for _, sub := range subs {
			sub.Close()
		}

		hub.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	rooms := redis.NewRoomStore(redisClient)
	pubsub := redis.NewPubSub(redisClient)

	classifier, responder := setupAgent(cfg)

	// Delivery: broker -> hub -> websocket clients
	membership := registry.NewMembership()
	hub := websocket.NewHub(membership, rooms, clock)
	roomSub := pubsub.SubscribeRooms(context.Background())
	go hub.ConsumeRooms(roomSub)

	// Analysis: broker -> worker -> redis counters
	worker := analysis.NewWorker(classifier, rooms)
	analysisSub := pubsub.SubscribeAnalysis(context.Background())
	go worker.Run(analysisSub)

	chatSvc := chat.NewService(rooms, pubsub, responder)

	srv := server.NewServer(cfg, chatSvc, hub, redisClient)

	done := runGracefulShutdown(srv, hub, roomSub, analysisSub)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
