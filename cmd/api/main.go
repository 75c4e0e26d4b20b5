package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/PaulBabatuyi/furgo/internal/alerts"
	v1 "github.com/PaulBabatuyi/furgo/internal/api/v1"
	"github.com/PaulBabatuyi/furgo/internal/auth"
	"github.com/PaulBabatuyi/furgo/internal/chat"
	"github.com/PaulBabatuyi/furgo/internal/config"
	"github.com/PaulBabatuyi/furgo/internal/data"
	"github.com/PaulBabatuyi/furgo/internal/db"
	"github.com/PaulBabatuyi/furgo/internal/doccrypt"
	"github.com/PaulBabatuyi/furgo/internal/middleware"
	"github.com/PaulBabatuyi/furgo/internal/registry"
	"github.com/PaulBabatuyi/furgo/internal/session"
	"github.com/PaulBabatuyi/furgo/internal/workflow"
)

// backend is every store the services read and write.
type backend interface {
	registry.Store
	workflow.Store
	chat.Store
	alerts.Store
	session.UserFinder
}

// rateLimited are the methods guarded by the per-caller limiter.
var rateLimited = map[string]bool{
	v1.Furgo_Register_FullMethodName:    true,
	v1.Furgo_Login_FullMethodName:       true,
	v1.Furgo_SendMessage_FullMethodName: true,
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exit", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer func() {
		_ = dbClient.Close(ctx)
	}()

	if err := dbClient.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	stores := data.NewStores(dbClient)

	// JWT_KEYS enables key rotation; JWT_SECRET is the single-key fallback.
	var tokens *auth.JWTManager
	if len(cfg.JWTKeys) > 0 {
		tokens = auth.NewJWTManagerFromKeys(cfg.JWTKeys, cfg.JWTActiveKid, cfg.SessionTTL)
	} else {
		tokens = auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	}

	hub := NewConnectionHub()
	svc := buildServices(stores, stores.AppMessages, stores.EmergencyMessages, tokens, hub, logger)

	// small burst to allow a couple of quick retries
	limiter := middleware.NewLimiterStore(cfg.RateLimitRPM, 3, time.Minute)
	defer limiter.Stop()

	opts := serverOptions(svc.sessions, limiter, logger)
	if cfg.TLSEnabled() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("failed to load TLS certs: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)
	registerService(grpcServer, newServer(svc, hub, logger))

	listenAddr := fmt.Sprintf(":%s", cfg.Port)
	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", "addr", listenAddr, "tls", cfg.TLSEnabled())
		serveErr <- grpcServer.Serve(lis)
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}

	logger.Info("shutting down gRPC server")
	grpcServer.GracefulStop()
	return nil
}

// buildServices wires the core services over store.
func buildServices(store backend, appMsgs, emergencyMsgs chat.MessageStore, tokens *auth.JWTManager, hub *ConnectionHub, logger *slog.Logger) services {
	dispatcher := alerts.New(store, logger)
	router := chat.New(store, appMsgs, emergencyMsgs, dispatcher, logger)
	router.SetNotifier(hub)
	return services{
		sessions: session.NewManager(store, tokens, logger),
		registry: registry.New(store, doccrypt.New(logger, doccrypt.DefaultParams), logger),
		workflow: workflow.New(store, appMsgs, dispatcher, hub, logger),
		chat:     router,
		alerts:   dispatcher,
	}
}

// serverOptions chains auth before the limiter so signed-in callers are
// limited per user.
func serverOptions(sessions *session.Manager, limiter *middleware.LimiterStore, logger *slog.Logger) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			authUnaryInterceptor(sessions),
			middleware.RateLimitUnaryInterceptor(limiter, rateLimited, logger),
		),
		grpc.ChainStreamInterceptor(authStreamInterceptor(sessions)),
	}
}
