package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wareflow/ruleengine/internal/action"
	"github.com/wareflow/ruleengine/internal/api"
	"github.com/wareflow/ruleengine/internal/audit"
	"github.com/wareflow/ruleengine/internal/auth"
	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/config"
	"github.com/wareflow/ruleengine/internal/evaluation"
	"github.com/wareflow/ruleengine/internal/notify"
	"github.com/wareflow/ruleengine/internal/store"
	"github.com/wareflow/ruleengine/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	telemetry.Init()

	ctx := context.Background()

	// field catalog with optional hot reload
	holder, err := catalog.NewHolder(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	log.Printf("catalog: %d fields from %s", holder.Current().Len(), cfg.CatalogPath)

	stopWatch := make(chan struct{})
	if cfg.CatalogWatch {
		go func() {
			if err := holder.Watch(stopWatch); err != nil {
				log.Printf("catalog: watch stopped: %v", err)
			}
		}()
	}

	// rule store
	st, err := store.NewStore(ctx, cfg.StoreType, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	// action registry with builtins
	sender := notify.NewSender(cfg.NotifySigningSecret)
	registry := action.NewRegistry()
	if err := action.RegisterBuiltins(registry, sender); err != nil {
		log.Fatalf("actions: %v", err)
	}

	// evaluation service
	executor := action.NewExecutor(registry)
	svc := evaluation.NewService(holder, executor)

	// audit trail
	auditSvc := audit.NewService(audit.LogSink{}, nil, nil, nil, 256)
	defer auditSvc.Close()

	// API server with deps
	authn := auth.NewAuthenticator(cfg.AdminAPIKey, cfg.ClientAPIKey)
	srvAPI := api.NewServer(st, holder, registry, svc, authn,
		api.WithRateLimitPerIP(cfg.RateLimitPerIP),
		api.WithAudit(auditSvc),
	)

	// initial snapshot
	if err := srvAPI.RebuildSnapshot(ctx); err != nil {
		log.Fatalf("snapshot: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// metrics server
	metricsSrv := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: promhttp.Handler(),
	}
	go func() {
		log.Printf("metrics on %s", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	close(stopWatch)
	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	_ = metricsSrv.Shutdown(ctxShut)
	log.Println("stopped")
}
