/*
Package main is the entry point for the chat server.

It loads configuration, initializes the global logger, opens the PostgreSQL pool and the
Redis client, wires the services into the HTTP router and handles SIGINT/SIGTERM with a
graceful shutdown that also closes every live WebSocket connection.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"roomchat/internal/app/auth"
	"roomchat/internal/app/chat"
	"roomchat/internal/app/db"
	"roomchat/internal/app/revocation"
	"roomchat/internal/configs"
	"roomchat/internal/handler"
	"roomchat/internal/pkg/auth/jwt"
	"roomchat/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("base_path", cfg.Service.BasePath).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, db.PoolConfig{
		DSN:             cfg.DB.ConnectionString,
		ApplicationName: cfg.DB.ApplicationName,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	revocations := revocation.NewStore(rdb)
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := revocations.Ping(pingCtx); err != nil {
		cancelPing()
		logx.Fatal(err, "Failed to reach Redis", "addr", cfg.Redis.Addr)
	}
	cancelPing()

	tokens, err := jwt.NewService(jwt.Config{
		PrivateKeyPEM: cfg.Auth.PrivateKey,
		PublicKeyPEM:  cfg.Auth.PublicKey,
		Algorithm:     cfg.Auth.Algorithm,
		AccessTTL:     cfg.Auth.AccessTTL(),
		RefreshTTL:    cfg.Auth.RefreshTTL(),
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize token service")
	}

	store := db.NewStore(pool)
	registry := chat.NewRegistry()

	deps := &handler.AppDeps{
		Config:   cfg,
		Auth:     auth.NewService(tokens, revocations, store),
		Chats:    chat.NewService(store, registry),
		Users:    store,
		Registry: registry,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(ctx, deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info("Chat server starting", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	// Hijacked WebSocket connections are not tracked by server.Shutdown.
	registry.Shutdown()

	logx.Info("Server gracefully stopped.")
}
