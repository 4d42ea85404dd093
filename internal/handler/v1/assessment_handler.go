package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/internal/domain/health"
	"github.com/carelink/carelink-ai/internal/service"
)

// AssessmentHandler serves the member-level risk prediction and anomaly
// detection endpoints.
type AssessmentHandler struct {
	svc *service.HealthAssessService
	log *zap.Logger
}

func NewAssessmentHandler(svc *service.HealthAssessService, log *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{svc: svc, log: log}
}

// PredictRisk handles POST /predict-health-risk.
func (h *AssessmentHandler) PredictRisk(c *gin.Context) {
	var data health.MemberHealthData
	if !bindJSON(c, &data) {
		return
	}

	c.JSON(http.StatusOK, h.svc.PredictRisk(&data))
}

// DetectAnomalies handles POST /detect-anomalies.
func (h *AssessmentHandler) DetectAnomalies(c *gin.Context) {
	var data health.MemberHealthData
	if !bindJSON(c, &data) {
		return
	}

	c.JSON(http.StatusOK, h.svc.DetectAnomalies(&data))
}
