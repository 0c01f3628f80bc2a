package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/antoniostano/rtgate/internal/config"
	"github.com/antoniostano/rtgate/internal/grants"
	"github.com/antoniostano/rtgate/internal/httpapi"
	"github.com/antoniostano/rtgate/internal/observability"
	"github.com/antoniostano/rtgate/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := grants.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("grant store init failed: %v", err)
	}
	defer store.Close()
	if cfg.DatabaseURL != "" {
		log.Printf("grant store: postgres")
	} else {
		log.Printf("grant store: in-memory")
	}

	client := realtime.NewClient(realtime.ClientConfig{
		BaseURL: cfg.OpenAIBaseURL,
		HTTP: &http.Client{
			Transport: &realtime.APIKeyTransport{APIKey: cfg.OpenAIAPIKey},
		},
	})

	api := httpapi.New(cfg, client, store, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	grants.StartJanitor(runCtx, store, cfg.SweepInterval, func(expired int) {
		metrics.GrantsSwept.Add(float64(expired))
		log.Printf("janitor expired %d grants", expired)
	})

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
