package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peertalk/chat-service/config"
	"github.com/peertalk/chat-service/internal/auth"
	"github.com/peertalk/chat-service/internal/chat"
	"github.com/peertalk/chat-service/internal/postgres"
	"github.com/peertalk/chat-service/internal/service"
	httpx "github.com/peertalk/chat-service/internal/transport/http"
	"github.com/peertalk/chat-service/internal/transport/ws"
	"github.com/peertalk/chat-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	pool, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// --- repos ---
	convRepo := postgres.NewConversationRepository(pool)
	msgRepo := postgres.NewMessageRepository(pool)
	identRepo := postgres.NewIdentityRepository(pool)

	// --- runtime state & services ---
	state := chat.NewState(cfg.TypingTTL())

	unreadSvc := service.NewUnreadService(msgRepo, state)
	receiptSvc := service.NewReceiptService(convRepo, msgRepo, state, unreadSvc)
	messageSvc := service.NewMessageService(convRepo, msgRepo, identRepo, state, unreadSvc)
	memberSvc := service.NewMemberService(convRepo, state, receiptSvc)
	convSvc := service.NewConversationService(convRepo)

	// --- gateway & transports ---
	gateway := auth.NewGateway(auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer), identRepo)

	wsServer := ws.NewServer(gateway, state, memberSvc, messageSvc, receiptSvc, unreadSvc)
	handler := httpx.NewHandler(convSvc, messageSvc, unreadSvc)
	router := httpx.NewRouter(handler, gateway, wsServer)

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
