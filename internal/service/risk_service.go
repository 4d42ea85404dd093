package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/internal/domain/health"
)

// Per-category risk weights for the lightweight profile scoring. These are
// product heuristics, not clinical coefficients.
const (
	cvRiskAgeOver50     = 0.2
	cvRiskAgeOver65     = 0.3
	cvRiskHypertension  = 0.25
	cvRiskDiabetes      = 0.2
	cvRiskCholesterol   = 0.15
	diabetesRiskOver45  = 0.2
	diabetesRiskObesity = 0.3
	diabetesRiskHistory = 0.9

	highRiskThreshold = 0.6
)

// ProfileRisks is the per-category risk assessment of a patient profile.
// Scores are clamped to [0,1].
type ProfileRisks struct {
	Risks           map[string]float64 `json:"risks"`
	HighRiskFactors []string           `json:"high_risk_factors"`
	Recommendations []string           `json:"recommendations"`
}

// RiskService scores cardiovascular and diabetes risk from a patient
// profile: age, body mass index and medical history.
type RiskService struct {
	log *zap.Logger
}

func NewRiskService(log *zap.Logger) *RiskService {
	return &RiskService{log: log}
}

func (s *RiskService) Predict(profile *health.PatientProfile) *ProfileRisks {
	antecedents := make(map[string]bool, len(profile.Antecedents))
	for _, a := range profile.Antecedents {
		antecedents[strings.ToLower(strings.TrimSpace(a))] = true
	}

	cv := 0.0
	if profile.Age > 50 {
		cv += cvRiskAgeOver50
	}
	if profile.Age > 65 {
		cv += cvRiskAgeOver65
	}
	if antecedents["hypertension"] {
		cv += cvRiskHypertension
	}
	if antecedents["diabete"] {
		cv += cvRiskDiabetes
	}
	if antecedents["cholesterol"] {
		cv += cvRiskCholesterol
	}

	diabetes := 0.0
	if profile.Age > 45 {
		diabetes += diabetesRiskOver45
	}
	if profile.BMI > 30 {
		diabetes += diabetesRiskObesity
	}
	if antecedents["diabete"] {
		diabetes = diabetesRiskHistory
	}

	risks := map[string]float64{
		"cardiovasculaire": clamp01(cv),
		"diabete":          clamp01(diabetes),
	}

	high := []string{}
	for _, category := range []string{"cardiovasculaire", "diabete"} {
		if risks[category] > highRiskThreshold {
			high = append(high, category)
		}
	}

	recommendation := "Maintenez un mode de vie sain"
	if len(high) > 0 {
		recommendation = "Consultation médicale régulière recommandée"
	}

	return &ProfileRisks{
		Risks:           risks,
		HighRiskFactors: high,
		Recommendations: []string{recommendation},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
