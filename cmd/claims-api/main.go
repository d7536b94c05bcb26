// Command claims-api serves the claims assistant over HTTP.
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

	"github.com/gin-gonic/gin"
	"github.com/sweetpotato0/ai-claims/api"
	"github.com/sweetpotato0/ai-claims/app"
	"github.com/sweetpotato0/ai-claims/config"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	"github.com/sweetpotato0/ai-claims/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		logging.Logger().Error("claims-api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := logging.WithComponent("claims-api")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{ServiceName: api.ServiceName})
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	core, err := app.NewCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer core.Close()

	sessions, closeSessions, err := app.NewSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	llm, closeLLM, err := app.NewLLM(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer closeLLM()

	orchestrator, closeTools, err := app.NewAssistant(ctx, cfg, core, llm, sessions, logging.WithComponent("assistant"))
	if err != nil {
		return err
	}
	defer closeTools()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewRouter(api.NewHandler(orchestrator, core.Aggregator, core.Engine)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "provider", cfg.LLM.Provider,
			"claim_store", cfg.ClaimStore, "member_store", cfg.MemberStore, "session_store", cfg.SessionStore)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
