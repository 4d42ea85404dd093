// Package extract turns raw recognized prescription text into structured
// medical entities: medications with dosage and posology, the prescription
// date and the prescribing physician. Extraction never fails; every field
// is optional and missing information is represented as nil.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/config"
	"github.com/carelink/carelink-ai/internal/domain/prescription"
)

// Common French medical vocabulary used as a weak signal that a line
// belongs to a prescription body.
var medicalKeywords = []string{
	"comprimé", "gélule", "sachet", "ampoule", "suppositoire",
	"sirop", "crème", "pommade", "solution", "spray",
	"mg", "g", "ml", "fois", "par jour",
}

// Administrative words that disqualify a line as a medication name.
var excludedWords = []string{
	"docteur", "patient", "ordonnance", "monsieur", "madame",
	"date", "signature", "cachet", "note", "observation",
}

var frenchMonths = map[string]time.Month{
	"janvier": time.January, "février": time.February, "mars": time.March,
	"avril": time.April, "mai": time.May, "juin": time.June,
	"juillet": time.July, "août": time.August, "septembre": time.September,
	"octobre": time.October, "novembre": time.November, "décembre": time.December,
}

type Extractor struct {
	cfg config.ExtractionConfig
	log *zap.Logger

	dosagePatterns   []*regexp.Regexp
	posologyPatterns []*regexp.Regexp
	durationPatterns []*regexp.Regexp

	numericDatePattern *regexp.Regexp
	namedDatePattern   *regexp.Regexp
	physicianPattern   *regexp.Regexp

	allCapsName *regexp.Regexp
	dosageHint  *regexp.Regexp
}

func New(cfg config.ExtractionConfig, log *zap.Logger) *Extractor {
	return &Extractor{
		cfg: cfg,
		log: log,

		dosagePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(mg|g|ml|µg|UI|%)`),
			regexp.MustCompile(`(?i)(\d+)\s*comprimés?`),
		},
		posologyPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(\d+)\s*(?:fois?|x)\s*par\s*jour`),
			regexp.MustCompile(`(?i)(\d+)\s*(?:comprimés?|gélules?|sachets?)\s*par\s*jour`),
			regexp.MustCompile(`(?i)matin\s*et\s*soir`),
			regexp.MustCompile(`(?i)au\s*(?:lever|coucher)`),
			regexp.MustCompile(`(?i)(?:avant|après|pendant)\s*les?\s*repas?`),
		},
		durationPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:pendant|durant)\s*(\d+)\s*(jours?|semaines?|mois)`),
			regexp.MustCompile(`(?i)(\d+)\s*(jours?|semaines?|mois)\s*de\s*traitement`),
		},

		numericDatePattern: regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`),
		namedDatePattern: regexp.MustCompile(
			`(?i)(\d{1,2})\s+(janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)\s+(\d{4})`),
		physicianPattern: regexp.MustCompile(
			`(?i)(?:Dr|Docteur|Pr|Professeur)[\s.]+([\p{L}\s\-]+?)(?:\n|,|$)`),

		allCapsName: regexp.MustCompile(`^[A-Z][A-Z\s\-]+\d*$`),
		dosageHint:  regexp.MustCompile(`(?i)\d+\s*(?:mg|g|ml|%)`),
	}
}

// Extract pulls all medical entities out of raw OCR text.
func (e *Extractor) Extract(text string) *prescription.Entities {
	text = strings.TrimSpace(text)

	entities := &prescription.Entities{
		Medications:      e.extractMedications(text),
		PrescriptionDate: e.extractDate(text),
		Physician:        e.extractPhysician(text),
	}

	e.log.Info("entity extraction completed",
		zap.Int("medications", len(entities.Medications)),
		zap.Bool("date_found", entities.PrescriptionDate != nil),
		zap.Bool("physician_found", entities.Physician != nil),
	)

	return entities
}

// extractMedications walks the text line by line. Lines that look like
// medication names seed an entry; dosage is read from the line itself and
// posology/duration from a short window of following lines. The heuristic
// confidence starts at a base value, accumulates per-signal bonuses and is
// clamped to [0,100].
func (e *Extractor) extractMedications(text string) []prescription.ExtractedMedication {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	var medications []prescription.ExtractedMedication
	for i, line := range lines {
		if !e.isMedicationName(line) {
			continue
		}

		med := prescription.ExtractedMedication{
			Name:       line,
			Confidence: e.cfg.BaseConfidence,
		}

		if dosage := firstMatch(e.dosagePatterns, line); dosage != nil {
			med.Dosage = dosage
			med.Confidence += e.cfg.DosageBonus
		}

		end := min(i+e.cfg.ContextWindowLines+1, len(lines))
		window := strings.Join(lines[i:end], "\n")

		if posology := firstMatch(e.posologyPatterns, window); posology != nil {
			med.Posology = posology
			med.Confidence += e.cfg.PosologyBonus
		}
		if duration := firstMatch(e.durationPatterns, window); duration != nil {
			med.Duration = duration
			med.Confidence += e.cfg.DurationBonus
		}

		lower := strings.ToLower(line)
		for _, kw := range medicalKeywords {
			if strings.Contains(lower, kw) {
				med.Confidence += e.cfg.KeywordBonus
				break
			}
		}

		med.Confidence = clamp(med.Confidence, 0, 100)
		medications = append(medications, med)
	}

	return medications
}

// isMedicationName decides whether a line plausibly names a medication:
// reasonable length, no administrative vocabulary, starts with an uppercase
// letter or a digit, and either looks like an all-caps product name or
// carries a dosage. A capitalized line passes by default.
func (e *Extractor) isMedicationName(line string) bool {
	if n := utf8.RuneCountInString(line); n < 3 || n > 50 {
		return false
	}

	lower := strings.ToLower(line)
	for _, word := range excludedWords {
		if strings.Contains(lower, word) {
			return false
		}
	}

	first := []rune(line)[0]
	if !unicode.IsUpper(first) && !unicode.IsDigit(first) {
		return false
	}

	if e.allCapsName.MatchString(line) {
		return true
	}
	if e.dosageHint.MatchString(line) {
		return true
	}

	return unicode.IsUpper(first)
}

// extractDate finds the prescription date: numeric DD/MM/YYYY first, then
// French month names. Matches that do not form a real calendar date are
// skipped; the first valid match wins.
func (e *Extractor) extractDate(text string) *time.Time {
	for _, m := range e.numericDatePattern.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if d, ok := validDate(year, time.Month(month), day); ok {
			return &d
		}
	}

	for _, m := range e.namedDatePattern.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, ok := frenchMonths[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		year, _ := strconv.Atoi(m[3])
		if d, ok := validDate(year, month, day); ok {
			return &d
		}
	}

	return nil
}

func (e *Extractor) extractPhysician(text string) *string {
	m := e.physicianPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return nil
	}
	return &name
}

// validDate builds a UTC date and rejects values that time.Date would
// silently normalize, such as day 32 or month 13.
func validDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func firstMatch(patterns []*regexp.Regexp, text string) *string {
	for _, p := range patterns {
		if m := p.FindString(text); m != "" {
			return &m
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
