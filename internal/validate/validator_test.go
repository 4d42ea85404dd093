package validate

import (
	"testing"

	"github.com/carelink/carelink-ai/internal/domain/catalog"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	return New(catalog.NewMedications())
}

func TestValidateExactMatch(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate("DOLIPRANE")
	if !result.IsValid {
		t.Fatal("DOLIPRANE should be valid")
	}
	if result.NormalizedName == nil || *result.NormalizedName != "DOLIPRANE" {
		t.Errorf("unexpected normalized name %v", result.NormalizedName)
	}
	if result.INN == nil || *result.INN != "paracétamol" {
		t.Errorf("unexpected INN %v", result.INN)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", result.Suggestions)
	}
}

func TestValidateCaseInsensitive(t *testing.T) {
	v := newTestValidator(t)

	for _, name := range []string{"doliprane", "Doliprane", "  DOLIPRANE  "} {
		result := v.Validate(name)
		if !result.IsValid {
			t.Errorf("%q should be valid", name)
		}
	}
}

func TestValidateTypoSuggestions(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate("DOLIPRAN")
	if result.IsValid {
		t.Fatal("DOLIPRAN should not be valid")
	}
	if len(result.Suggestions) == 0 {
		t.Fatal("expected suggestions for DOLIPRAN")
	}
	if result.Suggestions[0] != "DOLIPRANE" {
		t.Errorf("best suggestion = %q, want DOLIPRANE", result.Suggestions[0])
	}
	// The fuzzy best match is surfaced but never confirms validity.
	if result.NormalizedName == nil || *result.NormalizedName != "DOLIPRANE" {
		t.Errorf("unexpected normalized name %v", result.NormalizedName)
	}
}

func TestValidateUnknown(t *testing.T) {
	v := newTestValidator(t)

	result := v.Validate("MEDICAMENT_INEXISTANT")
	if result.IsValid {
		t.Fatal("unknown name should not be valid")
	}
}

func TestValidateTooShort(t *testing.T) {
	v := newTestValidator(t)

	for _, name := range []string{"", "A", " X "} {
		result := v.Validate(name)
		if result.IsValid {
			t.Errorf("%q should not be valid", name)
		}
		if len(result.Suggestions) != 0 {
			t.Errorf("%q: expected no suggestions, got %v", name, result.Suggestions)
		}
	}
}

func TestValidateSuggestionLimit(t *testing.T) {
	v := newTestValidator(t)

	// A fragment close to several paracetamol brand names.
	result := v.Validate("DAFALGON")
	if len(result.Suggestions) > maxSuggestions {
		t.Errorf("got %d suggestions, want at most %d", len(result.Suggestions), maxSuggestions)
	}
}

func TestValidateIdempotent(t *testing.T) {
	v := newTestValidator(t)

	first := v.Validate("efferalgan")
	if !first.IsValid || first.NormalizedName == nil {
		t.Fatal("efferalgan should validate")
	}

	second := v.Validate(*first.NormalizedName)
	if !second.IsValid {
		t.Fatal("normalized name should validate")
	}
	if *second.NormalizedName != *first.NormalizedName {
		t.Errorf("normalization not idempotent: %q vs %q", *first.NormalizedName, *second.NormalizedName)
	}
}

func TestSimilarityCutoff(t *testing.T) {
	v := newTestValidator(t)

	// Nothing in the catalog is within the cutoff of this string.
	result := v.Validate("ZZZZZZZZZZZZZZZZZZZZ")
	if len(result.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", result.Suggestions)
	}
	if result.NormalizedName != nil {
		t.Errorf("expected nil normalized name, got %q", *result.NormalizedName)
	}
}
