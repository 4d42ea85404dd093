package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/config"
	"github.com/carelink/carelink-ai/internal/middleware"
	"github.com/carelink/carelink-ai/pkg/auth"
	"github.com/carelink/carelink-ai/pkg/metrics"
)

// OCRRouterDeps wires the OCR server router.
type OCRRouterDeps struct {
	Cfg            *config.Config
	Verifier       *auth.Verifier
	Collector      *metrics.Collector
	Log            *zap.Logger
	Prescriptions  *PrescriptionHandler
	Assessments    *AssessmentHandler
	ArchiveEnabled bool
}

// NewOCRRouter assembles the gin engine for the OCR / extraction server.
func NewOCRRouter(deps OCRRouterDeps) *gin.Engine {
	r := newEngine(deps.Cfg, deps.Collector, deps.Log)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "CareLink Medical OCR API",
			"version": deps.Cfg.App.Version,
			"status":  "running",
			"endpoints": gin.H{
				"health":              "/health",
				"ocr_extract":         "POST /ocr/extract",
				"validate_medication": "POST /validate-medication",
				"predict_health_risk": "POST /predict-health-risk",
				"detect_anomalies":    "POST /detect-anomalies",
			},
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"services": gin.H{
				"ocr":              true,
				"nlp":              true,
				"medication_db":    true,
				"health_predictor": true,
				"ml_trained":       false,
				"archive":          deps.ArchiveEnabled,
			},
		})
	})

	authorized := r.Group("/", middleware.BearerAuth(deps.Verifier))
	authorized.POST("/ocr/extract", deps.Prescriptions.Extract)
	authorized.POST("/validate-medication", deps.Prescriptions.ValidateMedication)
	authorized.POST("/predict-health-risk", deps.Assessments.PredictRisk)
	authorized.POST("/detect-anomalies", deps.Assessments.DetectAnomalies)
	if deps.ArchiveEnabled {
		authorized.GET("/prescriptions", deps.Prescriptions.ListRecords)
		authorized.GET("/prescriptions/:id", deps.Prescriptions.GetRecord)
	}

	return r
}

// TriageRouterDeps wires the semantic health server router.
type TriageRouterDeps struct {
	Cfg       *config.Config
	Verifier  *auth.Verifier
	Collector *metrics.Collector
	Log       *zap.Logger
	Triage    *TriageHandler
}

// NewTriageRouter assembles the gin engine for the semantic health server.
func NewTriageRouter(deps TriageRouterDeps) *gin.Engine {
	r := newEngine(deps.Cfg, deps.Collector, deps.Log)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":   "CareLink IA Health",
			"version":   deps.Cfg.App.Version,
			"status":    "running",
			"endpoints": []string{"/analyze-symptoms", "/drug-interaction", "/predict-risk", "/health"},
		})
	})

	r.GET("/health", deps.Triage.Health)

	authorized := r.Group("/", middleware.BearerAuth(deps.Verifier))
	authorized.POST("/analyze-symptoms", deps.Triage.AnalyzeSymptoms)
	authorized.POST("/drug-interaction", deps.Triage.DrugInteraction)
	authorized.POST("/predict-risk", deps.Triage.PredictRisk)
	authorized.POST("/clear-cache", deps.Triage.ClearCache)

	return r
}

func newEngine(cfg *config.Config, collector *metrics.Collector, log *zap.Logger) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(collector))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RateLimit(cfg.RateLimit))

	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	return r
}
