package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/internal/domain/catalog"
	"github.com/carelink/carelink-ai/internal/semantic"
	"github.com/carelink/carelink-ai/pkg/metrics"
)

// ConditionMatch is one catalog condition ranked against the described
// symptoms.
type ConditionMatch struct {
	Name       string           `json:"name"`
	Similarity float64          `json:"similarity"`
	Severity   catalog.Severity `json:"severity"`
	Category   string           `json:"category,omitempty"`
}

// SymptomAnalysis is the outcome of one symptom triage pass. RiskScore is
// the top similarity in [0,1]; Fallback reports that the keyword analyzer
// produced the result instead of the semantic one.
type SymptomAnalysis struct {
	Severity        catalog.Severity
	Conditions      []ConditionMatch
	Recommendations []string
	RiskScore       float64
	Fallback        bool
}

// AnalysisContext carries optional patient context supplied by the caller.
type AnalysisContext struct {
	Age int `json:"age"`
}

// SymptomAnalyzer ranks symptoms against the condition catalog. The
// analyzer in use is decided once at startup; the keyword analyzer also
// serves as a per-request fallback when the semantic one fails.
type SymptomAnalyzer interface {
	Name() string
	Analyze(ctx context.Context, symptoms string, actx AnalysisContext) (*SymptomAnalysis, error)
}

// SymptomService triages free-text symptom descriptions.
type SymptomService struct {
	analyzer SymptomAnalyzer
	fallback SymptomAnalyzer
	metrics  *metrics.Collector
	log      *zap.Logger
}

// NewSymptomService probes the embedding backend once and picks the
// analyzer accordingly.
func NewSymptomService(ctx context.Context, embedder semantic.Embedder, collector *metrics.Collector, log *zap.Logger) *SymptomService {
	keyword := &keywordAnalyzer{}

	var analyzer SymptomAnalyzer = keyword
	if embedder != nil && embedder.Available(ctx) {
		analyzer = &semanticAnalyzer{embedder: embedder, conditions: catalog.Conditions()}
		log.Info("symptom analysis using semantic analyzer")
	} else {
		log.Warn("embedding backend unavailable, symptom analysis running in keyword fallback mode")
	}

	return &SymptomService{
		analyzer: analyzer,
		fallback: keyword,
		metrics:  collector,
		log:      log,
	}
}

// Analyze ranks the symptoms and derives an overall severity. A failing
// semantic analyzer degrades to the keyword fallback instead of surfacing
// an error; triage must always answer.
func (s *SymptomService) Analyze(ctx context.Context, symptoms string, actx AnalysisContext) (*SymptomAnalysis, error) {
	normalized := strings.ToLower(strings.TrimSpace(symptoms))

	analysis, err := s.analyzer.Analyze(ctx, normalized, actx)
	if err != nil {
		s.log.Warn("semantic analysis failed, falling back to keywords", zap.Error(err))
		s.metrics.FallbackActivations.Inc()
		analysis, err = s.fallback.Analyze(ctx, normalized, actx)
		if err != nil {
			return nil, err
		}
	}
	if analysis.Fallback && s.analyzer == s.fallback {
		s.metrics.FallbackActivations.Inc()
	}

	s.metrics.SymptomAnalysesTotal.WithLabelValues(string(analysis.Severity)).Inc()
	return analysis, nil
}

// AnalyzerName reports which analyzer was selected at startup.
func (s *SymptomService) AnalyzerName() string {
	return s.analyzer.Name()
}

// semanticAnalyzer ranks the full condition catalog by embedding cosine
// similarity. Condition embeddings go through the shared embedding cache,
// so the catalog is only embedded once per process in practice.
type semanticAnalyzer struct {
	embedder   semantic.Embedder
	conditions []catalog.Condition
}

func (a *semanticAnalyzer) Name() string { return "semantic" }

func (a *semanticAnalyzer) Analyze(ctx context.Context, symptoms string, actx AnalysisContext) (*SymptomAnalysis, error) {
	symptomVec, err := a.embedder.Embed(ctx, symptoms)
	if err != nil {
		return nil, err
	}

	matches := make([]ConditionMatch, 0, len(a.conditions))
	for _, cond := range a.conditions {
		condVec, err := a.embedder.Embed(ctx, cond.Symptoms)
		if err != nil {
			return nil, err
		}
		matches = append(matches, ConditionMatch{
			Name:       cond.Name,
			Similarity: semantic.Cosine(symptomVec, condVec),
			Severity:   cond.Severity,
			Category:   cond.Category,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	severity := catalog.SeverityNormal
	riskScore := 0.0
	if len(matches) > 0 {
		top := matches[0]
		riskScore = top.Similarity
		switch {
		case top.Similarity > 0.75 && top.Severity == catalog.SeverityEmergency:
			severity = catalog.SeverityEmergency
		case top.Similarity > 0.65 && (top.Severity == catalog.SeverityEmergency || top.Severity == catalog.SeverityUrgent):
			severity = catalog.SeverityUrgent
		case top.Similarity > 0.5:
			severity = catalog.SeverityWarning
		}
	}

	topN := matches
	if len(topN) > 5 {
		topN = topN[:5]
	}
	recTop := matches
	if len(recTop) > 3 {
		recTop = recTop[:3]
	}

	return &SymptomAnalysis{
		Severity:        severity,
		Conditions:      topN,
		Recommendations: recommendations(recTop, actx, severity),
		RiskScore:       riskScore,
	}, nil
}

// keywordAnalyzer is the degraded-mode analyzer: a handful of keyword
// groups mapped to fixed condition matches.
type keywordAnalyzer struct{}

func (a *keywordAnalyzer) Name() string { return "keyword" }

var keywordGroups = []struct {
	keywords []string
	match    ConditionMatch
}{
	{
		keywords: []string{"douleur thoracique", "oppression", "palpitations"},
		match:    ConditionMatch{Name: "Symptômes cardiaques", Similarity: 0.8, Severity: catalog.SeverityEmergency},
	},
	{
		keywords: []string{"difficultés respiratoires", "essoufflement sévère"},
		match:    ConditionMatch{Name: "Difficultés respiratoires", Similarity: 0.7, Severity: catalog.SeverityUrgent},
	},
	{
		keywords: []string{"fièvre", "température"},
		match:    ConditionMatch{Name: "Fièvre", Similarity: 0.6, Severity: catalog.SeverityWarning},
	},
}

func (a *keywordAnalyzer) Analyze(_ context.Context, symptoms string, _ AnalysisContext) (*SymptomAnalysis, error) {
	analysis := &SymptomAnalysis{
		Severity:        catalog.SeverityNormal,
		Conditions:      []ConditionMatch{},
		Recommendations: []string{"Consultez un médecin si les symptômes persistent"},
		RiskScore:       0.3,
		Fallback:        true,
	}

	for _, group := range keywordGroups {
		for _, kw := range group.keywords {
			if strings.Contains(symptoms, kw) {
				analysis.Severity = group.match.Severity
				analysis.Conditions = append(analysis.Conditions, group.match)
				analysis.RiskScore = group.match.Similarity
				return analysis, nil
			}
		}
	}

	return analysis, nil
}

// recommendations derives actionable advice from the top matches and the
// overall severity. An emergency short-circuits everything else.
func recommendations(top []ConditionMatch, actx AnalysisContext, severity catalog.Severity) []string {
	recs := []string{}

	if severity == catalog.SeverityEmergency {
		recs = append(recs,
			"🚨 APPELEZ IMMÉDIATEMENT LE 15 (SAMU) ou 112",
			"Ne perdez pas de temps, consultez en urgence",
		)
		return recs
	}

	if severity == catalog.SeverityUrgent {
		recs = append(recs,
			"⚠️ Consultez rapidement un médecin (sous 24h)",
			"Surveillez l'évolution des symptômes",
		)
	}

	if len(top) > 0 {
		switch top[0].Category {
		case "cardiovasculaire":
			recs = append(recs,
				"Repos allongé, évitez tout effort",
				"Notez l'heure de début des symptômes",
			)
		case "respiratoire":
			recs = append(recs,
				"Restez au calme, respirez lentement",
				"Évitez les irritants (fumée, allergènes)",
			)
		case "digestif":
			recs = append(recs,
				"Évitez de manger, hydratez-vous par petites gorgées",
				"Notez les aliments consommés récemment",
			)
		}
	}

	if actx.Age > 65 {
		recs = append(recs, "Âge > 65 ans : Consultez plutôt rapidement")
	}

	recs = append(recs, "Utilisez CareLink pour suivre l'évolution")
	return recs
}
