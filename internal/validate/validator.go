// Package validate checks extracted medication names against the reference
// catalog, normalizing known names and suggesting corrections for unknown
// ones through fuzzy matching.
package validate

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/carelink/carelink-ai/internal/domain/catalog"
	"github.com/carelink/carelink-ai/internal/domain/prescription"
)

const (
	// similarityCutoff is the minimum normalized similarity for a fuzzy
	// candidate to be suggested.
	similarityCutoff = 0.6
	// maxCandidates bounds the internal ranking; only the top
	// maxSuggestions are exposed.
	maxCandidates  = 10
	maxSuggestions = 5
)

type Validator struct {
	medications *catalog.Medications
}

func New(medications *catalog.Medications) *Validator {
	return &Validator{medications: medications}
}

// Validate decides whether a medication name is known. The checks run in
// order, first match winning: exact uppercase match, case-insensitive
// match, then fuzzy ranking. Only exact and case-insensitive matches set
// IsValid; a fuzzy best match is exposed as an unconfirmed normalized name.
func (v *Validator) Validate(name string) *prescription.ValidationResult {
	if len(strings.TrimSpace(name)) < 2 {
		return &prescription.ValidationResult{Suggestions: []string{}}
	}

	cleaned := strings.ToUpper(strings.TrimSpace(name))

	if med, ok := v.medications.Get(cleaned); ok {
		return &prescription.ValidationResult{
			IsValid:        true,
			NormalizedName: &med.Name,
			Suggestions:    []string{},
			INN:            &med.INN,
		}
	}

	if med, ok := v.medications.GetInsensitive(cleaned); ok {
		return &prescription.ValidationResult{
			IsValid:        true,
			NormalizedName: &med.Name,
			Suggestions:    []string{},
			INN:            &med.INN,
		}
	}

	suggestions := v.similar(cleaned)
	result := &prescription.ValidationResult{
		IsValid:     false,
		Suggestions: suggestions,
	}
	if len(suggestions) > 0 {
		result.NormalizedName = &suggestions[0]
	}
	return result
}

// similar ranks catalog names by normalized Levenshtein similarity and
// returns up to maxSuggestions names at or above the cutoff, best first.
func (v *Validator) similar(name string) []string {
	type candidate struct {
		name  string
		score float64
	}

	var candidates []candidate
	for _, catalogName := range v.medications.Names() {
		score := similarity(name, catalogName)
		if score >= similarityCutoff {
			candidates = append(candidates, candidate{name: catalogName, score: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	n := min(len(candidates), maxSuggestions)
	suggestions := make([]string, 0, n)
	for _, c := range candidates[:n] {
		suggestions = append(suggestions, c.name)
	}
	return suggestions
}

// similarity maps Levenshtein distance onto [0,1]: identical strings score
// 1, disjoint strings approach 0.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
