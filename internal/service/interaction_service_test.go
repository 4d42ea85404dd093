package service

import (
	"testing"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/internal/domain/catalog"
)

func newTestInteractionService(t *testing.T) *InteractionService {
	t.Helper()
	return NewInteractionService(catalog.NewMedications(), testCollector, zap.NewNop())
}

func TestCheckDuplicateIngredient(t *testing.T) {
	svc := newTestInteractionService(t)

	report := svc.Check([]string{"paracétamol", "doliprane"})
	if !report.HasInteraction {
		t.Fatal("expected an interaction")
	}
	if len(report.Interactions) != 1 {
		t.Fatalf("expected exactly 1 interaction, got %d", len(report.Interactions))
	}

	it := report.Interactions[0]
	if it.Level != "severe" {
		t.Errorf("level = %q, want severe", it.Level)
	}
	if it.Drug1 != "Paracétamol" || it.Drug2 != "Doliprane" {
		t.Errorf("unexpected drug names %q / %q", it.Drug1, it.Drug2)
	}
	if report.Severity != "severe" {
		t.Errorf("overall severity = %q, want severe", report.Severity)
	}
}

func TestCheckKnownPair(t *testing.T) {
	svc := newTestInteractionService(t)

	report := svc.Check([]string{"aspirine", "ibuprofène"})
	if len(report.Interactions) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(report.Interactions))
	}
	if report.Interactions[0].Level != "moderate" {
		t.Errorf("level = %q, want moderate", report.Interactions[0].Level)
	}
	if report.Severity != "moderate" {
		t.Errorf("overall severity = %q, want moderate", report.Severity)
	}
}

func TestCheckNoInteraction(t *testing.T) {
	svc := newTestInteractionService(t)

	report := svc.Check([]string{"doliprane", "amoxicilline"})
	if report.HasInteraction {
		t.Errorf("unexpected interactions: %+v", report.Interactions)
	}
	if report.Severity != "none" {
		t.Errorf("overall severity = %q, want none", report.Severity)
	}
	if len(report.Drugs) != 2 {
		t.Errorf("drugs_analyzed should echo the input, got %v", report.Drugs)
	}
}

func TestCheckEveryPairOnce(t *testing.T) {
	svc := newTestInteractionService(t)

	// Three paracetamol brands: 3 distinct pairs, all severe.
	report := svc.Check([]string{"doliprane", "efferalgan", "dafalgan"})
	if len(report.Interactions) != 3 {
		t.Fatalf("expected 3 interactions, got %d", len(report.Interactions))
	}
	for _, it := range report.Interactions {
		if it.Level != "severe" {
			t.Errorf("pair %s/%s: level = %q, want severe", it.Drug1, it.Drug2, it.Level)
		}
	}
}

func TestCheckUnknownDrugsIgnored(t *testing.T) {
	svc := newTestInteractionService(t)

	report := svc.Check([]string{"potion magique", "doliprane"})
	if report.HasInteraction {
		t.Errorf("unknown drugs should not interact: %+v", report.Interactions)
	}
}

func TestCheckAccentFolding(t *testing.T) {
	svc := newTestInteractionService(t)

	// Accented and unaccented spellings resolve to the same catalog entry.
	report := svc.Check([]string{"PARACETAMOL", "Doliprane"})
	if !report.HasInteraction || report.Severity != "severe" {
		t.Errorf("expected severe duplicate, got %+v", report)
	}
}
