package prescription

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValidityPeriod(t *testing.T) {
	prescribed := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	valid := prescribed.Add(ValidityPeriod)
	if got := valid.Format("2006-01-02"); got != "2024-06-13" {
		t.Errorf("validity end = %s, want 2024-06-13", got)
	}
}

func TestUnvalidatedCount(t *testing.T) {
	r := &Record{Medications: []StoredMedication{
		{IsValidated: true},
		{IsValidated: false},
		{IsValidated: false},
	}}
	if got := r.UnvalidatedCount(); got != 2 {
		t.Errorf("UnvalidatedCount() = %d, want 2", got)
	}

	if got := (&Record{}).UnvalidatedCount(); got != 0 {
		t.Errorf("empty record UnvalidatedCount() = %d, want 0", got)
	}
}

// The desktop application consumes the French field names; they are part of
// the wire contract and must not drift.
func TestRecordWireFormat(t *testing.T) {
	name := "DOLIPRANE"
	rec := &Record{
		FullText: "texte",
		Medications: []StoredMedication{
			{Name: name, Confidence: 80, IsValidated: true},
		},
		Confidence: 85,
		Quality:    QualityGood,
		Warnings:   []string{},
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"texte_complet", "medicaments", "confidence_globale", "qualite", "warnings"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing wire field %q", key)
		}
	}
	if decoded["qualite"] != "bonne" {
		t.Errorf("qualite = %v, want bonne", decoded["qualite"])
	}

	meds := decoded["medicaments"].([]any)
	med := meds[0].(map[string]any)
	for _, key := range []string{"nom", "nom_normalise", "dosage", "posologie", "duree", "confidence", "is_validated"} {
		if _, ok := med[key]; !ok {
			t.Errorf("missing medication wire field %q", key)
		}
	}
}

func TestValidationResultWireFormat(t *testing.T) {
	inn := "paracétamol"
	result := &ValidationResult{IsValid: true, INN: &inn, Suggestions: []string{}}

	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"is_valid", "nom_corrige", "suggestions", "dci"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing wire field %q", key)
		}
	}
}
