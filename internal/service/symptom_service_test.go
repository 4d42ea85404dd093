package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/internal/domain/catalog"
)

// mapEmbedder returns fixed vectors per text; unknown texts get a vector
// orthogonal to everything in the map.
type mapEmbedder struct {
	vectors map[string][]float32
}

func (m mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (m mapEmbedder) Available(context.Context) bool { return true }

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedding backend down")
}

func (failingEmbedder) Available(context.Context) bool { return false }

// vectorAt returns a unit vector whose cosine with [1,0,0] equals sim.
func vectorAt(sim float64) []float32 {
	other := 1 - sim*sim
	if other < 0 {
		other = 0
	}
	return []float32{float32(sim), float32(sqrt(other)), 0}
}

func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	x := v
	for i := 0; i < 40; i++ {
		x = (x + v/x) / 2
	}
	return x
}

func TestSemanticAnalyzerSeverity(t *testing.T) {
	conditions := []catalog.Condition{
		{Name: "Crise cardiaque", Symptoms: "cardiaque", Severity: catalog.SeverityEmergency, Category: "cardiovasculaire"},
		{Name: "Crise d'asthme", Symptoms: "asthme", Severity: catalog.SeverityUrgent, Category: "respiratoire"},
		{Name: "Grippe", Symptoms: "grippe", Severity: catalog.SeverityWarning, Category: "infectieux"},
	}

	tests := []struct {
		name     string
		topSim   float64
		topText  string
		want     catalog.Severity
		wantRisk float64
	}{
		{"high similarity emergency", 0.8, "cardiaque", catalog.SeverityEmergency, 0.8},
		{"mid similarity emergency demoted to urgent", 0.7, "cardiaque", catalog.SeverityUrgent, 0.7},
		{"mid similarity urgent", 0.7, "asthme", catalog.SeverityUrgent, 0.7},
		{"low similarity is warning", 0.55, "grippe", catalog.SeverityWarning, 0.55},
		{"no signal is normal", 0.2, "grippe", catalog.SeverityNormal, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := mapEmbedder{vectors: map[string][]float32{
				"mes symptômes": {1, 0, 0},
				tt.topText:      vectorAt(tt.topSim),
			}}
			analyzer := &semanticAnalyzer{embedder: embedder, conditions: conditions}

			analysis, err := analyzer.Analyze(context.Background(), "mes symptômes", AnalysisContext{})
			if err != nil {
				t.Fatal(err)
			}
			if analysis.Severity != tt.want {
				t.Errorf("severity = %s, want %s", analysis.Severity, tt.want)
			}
			if analysis.Conditions[0].Name == "" {
				t.Error("expected ranked conditions")
			}
			if diff := analysis.RiskScore - tt.wantRisk; diff > 0.01 || diff < -0.01 {
				t.Errorf("risk score = %v, want ~%v", analysis.RiskScore, tt.wantRisk)
			}
		})
	}
}

func TestSemanticAnalyzerRanksAllConditions(t *testing.T) {
	embedder := mapEmbedder{vectors: map[string][]float32{"x": {1, 0, 0}}}
	analyzer := &semanticAnalyzer{embedder: embedder, conditions: catalog.Conditions()}

	analysis, err := analyzer.Analyze(context.Background(), "x", AnalysisContext{})
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.Conditions) != 5 {
		t.Errorf("expected top 5 conditions, got %d", len(analysis.Conditions))
	}
	for i := 1; i < len(analysis.Conditions); i++ {
		if analysis.Conditions[i].Similarity > analysis.Conditions[i-1].Similarity {
			t.Fatal("conditions not sorted by similarity")
		}
	}
}

func TestKeywordAnalyzer(t *testing.T) {
	a := &keywordAnalyzer{}

	tests := []struct {
		symptoms string
		severity catalog.Severity
		risk     float64
	}{
		{"douleur thoracique intense depuis une heure", catalog.SeverityEmergency, 0.8},
		{"oppression et sueurs", catalog.SeverityEmergency, 0.8},
		{"essoufflement sévère au repos", catalog.SeverityUrgent, 0.7},
		{"fièvre depuis deux jours", catalog.SeverityWarning, 0.6},
		{"fatigue générale", catalog.SeverityNormal, 0.3},
	}

	for _, tt := range tests {
		analysis, err := a.Analyze(context.Background(), tt.symptoms, AnalysisContext{})
		if err != nil {
			t.Fatal(err)
		}
		if analysis.Severity != tt.severity {
			t.Errorf("%q: severity = %s, want %s", tt.symptoms, analysis.Severity, tt.severity)
		}
		if analysis.RiskScore != tt.risk {
			t.Errorf("%q: risk = %v, want %v", tt.symptoms, analysis.RiskScore, tt.risk)
		}
		if !analysis.Fallback {
			t.Error("keyword analysis should be marked as fallback")
		}
	}
}

func TestSymptomServiceFallsBackOnError(t *testing.T) {
	svc := &SymptomService{
		analyzer: &semanticAnalyzer{embedder: failingEmbedder{}, conditions: catalog.Conditions()},
		fallback: &keywordAnalyzer{},
		metrics:  testCollector,
		log:      zap.NewNop(),
	}

	analysis, err := svc.Analyze(context.Background(), "Douleur Thoracique", AnalysisContext{})
	if err != nil {
		t.Fatal(err)
	}
	if !analysis.Fallback {
		t.Error("expected fallback analysis")
	}
	if analysis.Severity != catalog.SeverityEmergency {
		t.Errorf("severity = %s, want emergency", analysis.Severity)
	}
}

func TestRecommendations(t *testing.T) {
	emergency := recommendations(nil, AnalysisContext{}, catalog.SeverityEmergency)
	if len(emergency) != 2 {
		t.Fatalf("emergency should short-circuit with 2 items, got %v", emergency)
	}
	if !strings.Contains(emergency[0], "15 (SAMU)") {
		t.Errorf("unexpected emergency recommendation %q", emergency[0])
	}

	top := []ConditionMatch{{Name: "Infarctus", Category: "cardiovasculaire"}}
	urgent := recommendations(top, AnalysisContext{Age: 70}, catalog.SeverityUrgent)

	var hasCardio, hasAge bool
	for _, r := range urgent {
		if strings.Contains(r, "Repos allongé") {
			hasCardio = true
		}
		if strings.Contains(r, "65 ans") {
			hasAge = true
		}
	}
	if !hasCardio {
		t.Errorf("missing cardio advice in %v", urgent)
	}
	if !hasAge {
		t.Errorf("missing senior advice in %v", urgent)
	}
	if urgent[len(urgent)-1] != "Utilisez CareLink pour suivre l'évolution" {
		t.Errorf("missing closing recommendation in %v", urgent)
	}
}
