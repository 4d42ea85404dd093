package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/internal/domain/catalog"
	"github.com/carelink/carelink-ai/pkg/metrics"
)

// DrugInteraction is one flagged interaction between two of the submitted
// drugs.
type DrugInteraction struct {
	Drug1          string `json:"drug1"`
	Drug2          string `json:"drug2"`
	Level          string `json:"level"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// InteractionReport aggregates all interactions found across a drug list.
// Severity is the worst level present: severe, moderate or none.
type InteractionReport struct {
	HasInteraction bool
	Interactions   []DrugInteraction
	Severity       string
	Drugs          []string
}

type pairRule struct {
	level          string
	description    string
	recommendation string
}

// Known risky combinations keyed by accent-folded lowercase names,
// alphabetical order.
var pairRules = map[[2]string]pairRule{
	{"aspirine", "ibuprofene"}: {
		level:          "moderate",
		description:    "Risque accru de saignement gastro-intestinal",
		recommendation: "Évitez de prendre ensemble. Espacez de 8h minimum.",
	},
}

// InteractionService checks a drug list for risky combinations: any two
// drugs sharing an active ingredient, plus a static table of known pairs.
type InteractionService struct {
	medications *catalog.Medications
	metrics     *metrics.Collector
	log         *zap.Logger
}

func NewInteractionService(medications *catalog.Medications, collector *metrics.Collector, log *zap.Logger) *InteractionService {
	return &InteractionService{medications: medications, metrics: collector, log: log}
}

// Check inspects every unordered pair of drugs. A pair yields at most one
// interaction; a shared active ingredient takes precedence over the static
// pair table.
func (s *InteractionService) Check(drugs []string) *InteractionReport {
	report := &InteractionReport{
		Interactions: []DrugInteraction{},
		Severity:     "none",
		Drugs:        drugs,
	}

	for i := 0; i < len(drugs); i++ {
		for j := i + 1; j < len(drugs); j++ {
			if interaction, ok := s.checkPair(drugs[i], drugs[j]); ok {
				report.Interactions = append(report.Interactions, interaction)
				s.metrics.InteractionsTotal.WithLabelValues(interaction.Level).Inc()
			}
		}
	}

	report.HasInteraction = len(report.Interactions) > 0
	for _, it := range report.Interactions {
		if it.Level == "severe" {
			report.Severity = "severe"
			break
		}
		report.Severity = "moderate"
	}

	return report
}

func (s *InteractionService) checkPair(a, b string) (DrugInteraction, bool) {
	medA, okA := s.medications.GetFold(a)
	medB, okB := s.medications.GetFold(b)
	if okA && okB && catalog.Fold(medA.INN) == catalog.Fold(medB.INN) {
		return DrugInteraction{
			Drug1:          titled(a),
			Drug2:          titled(b),
			Level:          "severe",
			Description:    "Même molécule ! Risque de surdosage hépatotoxique",
			Recommendation: "⚠️ NE PAS PRENDRE ENSEMBLE - C'est le même médicament",
		}, true
	}

	keyA := strings.ToLower(catalog.Fold(a))
	keyB := strings.ToLower(catalog.Fold(b))
	key := [2]string{keyA, keyB}
	if keyB < keyA {
		key = [2]string{keyB, keyA}
	}
	if rule, ok := pairRules[key]; ok {
		return DrugInteraction{
			Drug1:          titled(a),
			Drug2:          titled(b),
			Level:          rule.level,
			Description:    rule.description,
			Recommendation: rule.recommendation,
		}, true
	}

	return DrugInteraction{}, false
}

// titled uppercases the first rune for display, leaving the rest as given.
func titled(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
