package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/config"
	"github.com/carelink/carelink-ai/internal/domain/health"
)

// AssessmentStrategy scores a member snapshot and flags anomalies. The
// rule-based strategy is the only one shipped; the interface exists so a
// trained model can replace it without touching the service.
type AssessmentStrategy interface {
	Name() string
	Score(d *health.MemberHealthData) (score float64, level health.RiskLevel, confidence float64)
	DetectAnomalies(d *health.MemberHealthData) *health.AnomalyResult
}

// HealthAssessService produces risk predictions and anomaly reports from
// member counter snapshots.
type HealthAssessService struct {
	strategy AssessmentStrategy
	log      *zap.Logger
}

func NewHealthAssessService(strategy AssessmentStrategy, log *zap.Logger) *HealthAssessService {
	return &HealthAssessService{strategy: strategy, log: log}
}

// PredictRisk scores the member and attaches the identified risk factors
// and personalized recommendations.
func (s *HealthAssessService) PredictRisk(d *health.MemberHealthData) *health.RiskPrediction {
	score, level, confidence := s.strategy.Score(d)
	factors := identifyRiskFactors(d)

	prediction := &health.RiskPrediction{
		RiskLevel:       level,
		RiskScore:       round2(score),
		Confidence:      round2(confidence),
		RiskFactors:     factors,
		Recommendations: assessRecommendations(level, factors, d),
		Method:          s.strategy.Name(),
	}

	s.log.Info("health risk predicted",
		zap.String("risk_level", string(level)),
		zap.Float64("risk_score", prediction.RiskScore),
		zap.Int("factors", len(factors)),
	)

	return prediction
}

// DetectAnomalies flags unusual patterns in the member's records.
func (s *HealthAssessService) DetectAnomalies(d *health.MemberHealthData) *health.AnomalyResult {
	result := s.strategy.DetectAnomalies(d)
	if result.IsAnomaly {
		s.log.Warn("anomaly detected",
			zap.Float64("anomaly_score", result.AnomalyScore),
			zap.Strings("details", result.AnomalyDetails),
		)
	}
	return result
}

// RuleBasedStrategy is the additive-points scoring model. Point values come
// from configuration so the product team can tune them without a release.
type RuleBasedStrategy struct {
	cfg config.RiskConfig
}

func NewRuleBasedStrategy(cfg config.RiskConfig) *RuleBasedStrategy {
	return &RuleBasedStrategy{cfg: cfg}
}

func (r *RuleBasedStrategy) Name() string { return "rule_based" }

// Score sums weighted risk points and maps the total to a level. The
// confidence is fixed; rules carry no per-sample certainty.
func (r *RuleBasedStrategy) Score(d *health.MemberHealthData) (float64, health.RiskLevel, float64) {
	score := 0.0

	if d.Age >= 65 {
		score += r.cfg.AgeSeniorPoints
	} else if d.Age <= 5 {
		score += r.cfg.AgeChildPoints
	}

	score += math.Min(r.cfg.MissingVaccineCap, float64(d.Vaccinations.Missing())*r.cfg.MissingVaccinePoints)
	score += math.Min(r.cfg.CancelledApptCap, float64(d.Appointments.Cancelled)*r.cfg.CancelledApptPoints)

	score += float64(d.Treatments.LowStock) * r.cfg.LowStockPoints
	score += float64(d.Treatments.Expiring) * r.cfg.ExpiringPoints
	score += float64(d.Allergies.Severe) * r.cfg.SevereAllergyPoints

	switch {
	case d.DaysSinceLastAppointment > 730:
		score += r.cfg.NoFollowUpTwoYrPoints
	case d.DaysSinceLastAppointment > 365:
		score += r.cfg.NoFollowUpYearPoints
	}

	score = math.Min(100, score)

	var level health.RiskLevel
	switch {
	case score < 20:
		level = health.RiskLow
	case score < 40:
		level = health.RiskModerate
	case score < 70:
		level = health.RiskHigh
	default:
		level = health.RiskCritical
	}

	return score, level, 75.0
}

// DetectAnomalies applies three red-flag rules. The score is a coarse
// binary signal on the [-1,1] scale used by the desktop UI.
func (r *RuleBasedStrategy) DetectAnomalies(d *health.MemberHealthData) *health.AnomalyResult {
	anomalies := []string{}

	if d.Appointments.Total > 0 {
		cancelRatio := float64(d.Appointments.Cancelled) / float64(d.Appointments.Total)
		if cancelRatio > 0.5 {
			anomalies = append(anomalies,
				fmt.Sprintf("Taux d'annulation élevé: %.0f%% des rendez-vous", cancelRatio*100))
		}
	}

	if d.Treatments.Active > 10 {
		anomalies = append(anomalies,
			fmt.Sprintf("Nombre élevé de traitements actifs: %d", d.Treatments.Active))
	}

	if d.DaysSinceLastAppointment > 730 && d.Treatments.Active > 0 {
		anomalies = append(anomalies, "Traitements actifs sans suivi médical depuis 2+ ans")
	}

	result := &health.AnomalyResult{
		IsAnomaly:      len(anomalies) > 0,
		AnomalyScore:   0.5,
		AnomalyDetails: anomalies,
	}
	if result.IsAnomaly {
		result.AnomalyScore = -0.5
	}
	return result
}

// identifyRiskFactors explains the score: each triggered rule becomes a
// factor with an importance weight. Only the top five are reported.
func identifyRiskFactors(d *health.MemberHealthData) []health.RiskFactor {
	factors := []health.RiskFactor{}

	if d.Age >= 65 {
		factors = append(factors, health.RiskFactor{
			Factor:      "Âge avancé",
			Description: fmt.Sprintf("Âge: %d ans (risque accru)", d.Age),
			Importance:  0.7,
			Severity:    "moderate",
		})
	} else if d.Age <= 5 {
		factors = append(factors, health.RiskFactor{
			Factor:      "Jeune enfant",
			Description: fmt.Sprintf("Âge: %d ans (suivi renforcé nécessaire)", d.Age),
			Importance:  0.6,
			Severity:    "moderate",
		})
	}

	if missing := d.Vaccinations.Missing(); missing > 0 {
		severity := "moderate"
		if missing > 2 {
			severity = "high"
		}
		factors = append(factors, health.RiskFactor{
			Factor:      "Vaccinations incomplètes",
			Description: fmt.Sprintf("%d vaccination(s) manquante(s)", missing),
			Importance:  math.Min(1.0, float64(missing)*0.2),
			Severity:    severity,
		})
	}

	if d.Treatments.LowStock > 0 {
		factors = append(factors, health.RiskFactor{
			Factor:      "Stock de médicaments faible",
			Description: fmt.Sprintf("%d traitement(s) en rupture imminente", d.Treatments.LowStock),
			Importance:  0.8,
			Severity:    "high",
		})
	}

	if d.Allergies.Severe > 0 {
		factors = append(factors, health.RiskFactor{
			Factor:      "Allergies sévères",
			Description: fmt.Sprintf("%d allergie(s) sévère(s) identifiée(s)", d.Allergies.Severe),
			Importance:  0.9,
			Severity:    "high",
		})
	}

	if d.DaysSinceLastAppointment > 365 {
		severity := "moderate"
		if d.DaysSinceLastAppointment > 730 {
			severity = "high"
		}
		factors = append(factors, health.RiskFactor{
			Factor:      "Absence de suivi médical",
			Description: fmt.Sprintf("Dernier rendez-vous il y a %d mois", d.DaysSinceLastAppointment/30),
			Importance:  math.Min(1.0, float64(d.DaysSinceLastAppointment)/730),
			Severity:    severity,
		})
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Importance > factors[j].Importance
	})

	if len(factors) > 5 {
		factors = factors[:5]
	}
	return factors
}

// assessRecommendations turns level and factors into at most five
// actionable items.
func assessRecommendations(level health.RiskLevel, factors []health.RiskFactor, d *health.MemberHealthData) []string {
	recs := []string{}

	switch level {
	case health.RiskCritical:
		recs = append(recs, "🚨 URGENT: Prenez rendez-vous avec votre médecin dans les 48h")
	case health.RiskHigh:
		recs = append(recs, "⚠️ Consultez votre médecin dans les 2 semaines")
	}

	for _, f := range factors {
		factorLower := strings.ToLower(f.Factor)
		descLower := strings.ToLower(f.Description)
		switch {
		case strings.Contains(factorLower, "vaccination"):
			recs = append(recs, "💉 Planifiez vos vaccinations manquantes avec votre médecin")
		case strings.Contains(descLower, "stock") || strings.Contains(descLower, "rupture"):
			recs = append(recs, "💊 Renouvelez vos médicaments en rupture de stock rapidement")
		case strings.Contains(factorLower, "allergie"):
			recs = append(recs, "🏥 Portez toujours votre carte d'urgence allergies")
		case strings.Contains(factorLower, "suivi"):
			recs = append(recs, "📅 Planifiez un bilan de santé complet")
		}
	}

	hasBilan := false
	for _, r := range recs {
		if strings.Contains(strings.ToLower(r), "bilan") {
			hasBilan = true
			break
		}
	}
	if d.Age >= 65 && !hasBilan {
		recs = append(recs, "👴 Bilan gériatrique annuel recommandé")
	} else if d.Age <= 12 {
		recs = append(recs, "👶 Suivi pédiatrique régulier (tous les 6 mois)")
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
