// The OCR server extracts structured prescription data from scanned
// images: text recognition, medical entity extraction, medication
// validation and member-level risk assessment.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/config"
	"github.com/carelink/carelink-ai/internal/domain/catalog"
	"github.com/carelink/carelink-ai/internal/domain/prescription"
	"github.com/carelink/carelink-ai/internal/extract"
	v1 "github.com/carelink/carelink-ai/internal/handler/v1"
	"github.com/carelink/carelink-ai/internal/ocr"
	"github.com/carelink/carelink-ai/internal/repository"
	"github.com/carelink/carelink-ai/internal/service"
	"github.com/carelink/carelink-ai/internal/validate"
	"github.com/carelink/carelink-ai/pkg/auth"
	"github.com/carelink/carelink-ai/pkg/database"
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

	collector := metrics.NewCollector("carelink_ocr")

	var (
		repo     prescription.Repository
		archiver *service.ArchiveService
	)
	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if err := database.Migrate(db, log); err != nil {
			return err
		}
		repo = repository.NewPrescriptionRepository(db)
		archiver = service.NewArchiveService(repo, log)
		defer archiver.Shutdown()
		log.Info("prescription archiving enabled")
	} else {
		log.Info("running stateless, prescription archiving disabled")
	}

	medications := catalog.NewMedications()
	log.Info("medication catalog loaded", zap.Int("entries", medications.Len()))

	prescriptionSvc := service.NewPrescriptionService(
		ocr.NewPreprocessor(cfg.OCR, log),
		ocr.NewTesseractRecognizer(cfg.OCR, log),
		extract.New(cfg.Extraction, log),
		validate.New(medications),
		repo,
		archiver,
		cfg.OCR,
		cfg.Quality,
		collector,
		log,
	)
	assessSvc := service.NewHealthAssessService(service.NewRuleBasedStrategy(cfg.Risk), log)

	router := v1.NewOCRRouter(v1.OCRRouterDeps{
		Cfg:            cfg,
		Verifier:       verifier,
		Collector:      collector,
		Log:            log,
		Prescriptions:  v1.NewPrescriptionHandler(prescriptionSvc, log),
		Assessments:    v1.NewAssessmentHandler(assessSvc, log),
		ArchiveEnabled: cfg.Database.Enabled,
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
		log.Info("OCR server listening", zap.String("addr", srv.Addr))
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
