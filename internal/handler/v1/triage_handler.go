package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/internal/domain/catalog"
	"github.com/carelink/carelink-ai/internal/domain/health"
	"github.com/carelink/carelink-ai/internal/semantic"
	"github.com/carelink/carelink-ai/internal/service"
)

// TriageHandler serves the semantic health service endpoints: symptom
// analysis, drug interactions and profile risk scoring.
type TriageHandler struct {
	symptoms     *service.SymptomService
	interactions *service.InteractionService
	risks        *service.RiskService
	cache        *semantic.CachedEmbedder
	log          *zap.Logger
}

func NewTriageHandler(
	symptoms *service.SymptomService,
	interactions *service.InteractionService,
	risks *service.RiskService,
	cache *semantic.CachedEmbedder,
	log *zap.Logger,
) *TriageHandler {
	return &TriageHandler{
		symptoms:     symptoms,
		interactions: interactions,
		risks:        risks,
		cache:        cache,
		log:          log,
	}
}

type analyzeSymptomsRequest struct {
	Symptoms string                   `json:"symptoms" binding:"required"`
	Context  *service.AnalysisContext `json:"context"`
}

// AnalyzeSymptoms handles POST /analyze-symptoms.
func (h *TriageHandler) AnalyzeSymptoms(c *gin.Context) {
	var req analyzeSymptomsRequest
	if !bindJSON(c, &req) {
		return
	}

	actx := service.AnalysisContext{}
	if req.Context != nil {
		actx = *req.Context
	}

	analysis, err := h.symptoms.Analyze(c.Request.Context(), req.Symptoms, actx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := gin.H{
		"success":            true,
		"severity":           analysis.Severity,
		"similar_conditions": analysis.Conditions,
		"recommendations":    analysis.Recommendations,
		"risk_score":         analysis.RiskScore,
		"context_analyzed":   req.Context != nil,
	}
	if analysis.Fallback {
		resp["fallback_mode"] = true
	}

	c.JSON(http.StatusOK, resp)
}

type drugInteractionRequest struct {
	Drugs []string `json:"drugs" binding:"required"`
}

// DrugInteraction handles POST /drug-interaction.
func (h *TriageHandler) DrugInteraction(c *gin.Context) {
	var req drugInteractionRequest
	if !bindJSON(c, &req) {
		return
	}

	report := h.interactions.Check(req.Drugs)

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"has_interaction": report.HasInteraction,
		"interactions":    report.Interactions,
		"severity":        report.Severity,
		"drugs_analyzed":  report.Drugs,
	})
}

type predictRiskRequest struct {
	PatientProfile health.PatientProfile `json:"patient_profile" binding:"required"`
	Symptoms       string                `json:"symptoms"`
}

// PredictRisk handles POST /predict-risk.
func (h *TriageHandler) PredictRisk(c *gin.Context) {
	var req predictRiskRequest
	if !bindJSON(c, &req) {
		return
	}

	result := h.risks.Predict(&req.PatientProfile)

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"risks":             result.Risks,
		"high_risk_factors": result.HighRiskFactors,
		"recommendations":   result.Recommendations,
	})
}

// ClearCache handles POST /clear-cache.
func (h *TriageHandler) ClearCache(c *gin.Context) {
	evicted := 0
	if h.cache != nil {
		evicted = h.cache.Clear()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Cache vidé (%d entrées supprimées)", evicted),
	})
}

// Health handles GET /health for the triage server.
func (h *TriageHandler) Health(c *gin.Context) {
	cacheSize := 0
	if h.cache != nil {
		cacheSize = h.cache.Len()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service":          "carelink-ia-health",
		"analyzer":         h.symptoms.AnalyzerName(),
		"cache_size":       cacheSize,
		"conditions_count": len(catalog.Conditions()),
		"timestamp":        time.Now().Format(time.RFC3339),
	})
}
