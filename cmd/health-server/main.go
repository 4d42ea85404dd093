// The health server answers symptom triage, drug interaction and profile
// risk questions using embedding similarity with a keyword fallback.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/config"
	"github.com/carelink/carelink-ai/internal/domain/catalog"
	v1 "github.com/carelink/carelink-ai/internal/handler/v1"
	"github.com/carelink/carelink-ai/internal/semantic"
	"github.com/carelink/carelink-ai/internal/service"
	"github.com/carelink/carelink-ai/pkg/auth"
	"github.com/carelink/carelink-ai/pkg/logger"
	"github.com/carelink/carelink-ai/pkg/metrics"
	"github.com/carelink/carelink-ai/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer tp.Shutdown(context.Background())

	verifier, err := auth.NewVerifier(cfg.Auth.SharedSecret)
	if err != nil {
		return err
	}
	if verifier.Generated() {
		log.Warn("no CARELINK_SECRET configured, generated a bearer token",
			zap.String("token", verifier.Secret()),
		)
	}

	collector := metrics.NewCollector("carelink_health")

	cache, err := semantic.NewCachedEmbedder(
		semantic.NewOllamaEmbedder(cfg.Semantic, log),
		cfg.Semantic.CacheSize,
		collector.EmbeddingCacheHits,
		collector.EmbeddingCacheMisses,
	)
	if err != nil {
		return err
	}

	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 5*time.Second)
	symptomSvc := service.NewSymptomService(probeCtx, cache, collector, log)
	cancelProbe()

	medications := catalog.NewMedications()
	triage := v1.NewTriageHandler(
		symptomSvc,
		service.NewInteractionService(medications, collector, log),
		service.NewRiskService(log),
		cache,
		log,
	)

	router := v1.NewTriageRouter(v1.TriageRouterDeps{
		Cfg:       cfg,
		Verifier:  verifier,
		Collector: collector,
		Log:       log,
		Triage:    triage,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("health server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
