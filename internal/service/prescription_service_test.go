package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/config"
	"github.com/carelink/carelink-ai/internal/domain/catalog"
	"github.com/carelink/carelink-ai/internal/domain/prescription"
	"github.com/carelink/carelink-ai/internal/extract"
	"github.com/carelink/carelink-ai/internal/ocr"
	"github.com/carelink/carelink-ai/internal/validate"
	"github.com/carelink/carelink-ai/pkg/metrics"
)

// Shared across the package; prometheus collectors register globally.
var testCollector = metrics.NewCollector("carelink_service_test")

func testQualityConfig() config.QualityConfig {
	return config.QualityConfig{
		ConfidenceWeight:   0.6,
		ValidationWeight:   0.4,
		ExcellentThreshold: 85,
		GoodThreshold:      70,
		ModerateThreshold:  50,
		LowConfidenceWarn:  70,
	}
}

func testOCRConfig() config.OCRConfig {
	return config.OCRConfig{
		Languages:          []string{"fra", "eng"},
		MaxWidth:           2500,
		ContrastFactor:     1.5,
		SharpnessFactor:    1.3,
		ThresholdBlockSize: 11,
		ThresholdConstant:  2,
		DeskewMinAngle:     0.5,
		MinReadableChars:   10,
	}
}

// staticRecognizer returns canned text, standing in for Tesseract.
type staticRecognizer struct {
	text string
	conf float64
	err  error
}

func (r staticRecognizer) Recognize(context.Context, image.Image) (*prescription.RecognizedText, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &prescription.RecognizedText{Text: r.text, Confidence: r.conf}, nil
}

func newPipeline(t *testing.T, rec ocr.Recognizer) *PrescriptionService {
	t.Helper()
	log := zap.NewNop()
	return NewPrescriptionService(
		ocr.NewPreprocessor(testOCRConfig(), log),
		rec,
		extract.New(config.ExtractionConfig{
			BaseConfidence:     70,
			DosageBonus:        10,
			PosologyBonus:      10,
			DurationBonus:      5,
			KeywordBonus:       5,
			ContextWindowLines: 3,
		}, log),
		validate.New(catalog.NewMedications()),
		nil, nil,
		testOCRConfig(),
		testQualityConfig(),
		testCollector,
		log,
	)
}

func testImagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractFromImage(t *testing.T) {
	text := "Dr Martin\n" +
		"Ordonnance du 15/03/2024\n" +
		"DOLIPRANE 1000mg\n" +
		"1 comprimé 3 fois par jour\n" +
		"pendant 5 jours\n"

	svc := newPipeline(t, staticRecognizer{text: text, conf: 88})

	record, err := svc.ExtractFromImage(context.Background(), testImagePNG(t))
	if err != nil {
		t.Fatal(err)
	}

	if record.FullText != text {
		t.Error("full text not preserved")
	}
	if len(record.Medications) != 1 {
		t.Fatalf("expected 1 medication, got %d", len(record.Medications))
	}

	// The raw line keeps its dosage suffix, so catalog validation fails.
	med := record.Medications[0]
	if med.IsValidated {
		t.Error("DOLIPRANE 1000mg should not validate as-is")
	}
	if med.Name != "DOLIPRANE 1000mg" {
		t.Errorf("unexpected name %q", med.Name)
	}

	// confidence 88 * 0.6 + 0 validated * 0.4 = 52.8
	if record.Quality != prescription.QualityModerate {
		t.Errorf("quality = %s, want %s", record.Quality, prescription.QualityModerate)
	}
	if len(record.Warnings) != 1 {
		t.Errorf("expected 1 warning (unvalidated medication), got %v", record.Warnings)
	}

	if record.PrescribedOn == nil || *record.PrescribedOn != "2024-03-15" {
		t.Errorf("prescribed_on = %v, want 2024-03-15", record.PrescribedOn)
	}
	if record.ValidUntil == nil || *record.ValidUntil != "2024-06-13" {
		t.Errorf("valid_until = %v, want 2024-06-13 (90 days later)", record.ValidUntil)
	}
	if record.Physician == nil || *record.Physician != "Martin" {
		t.Errorf("physician = %v, want Martin", record.Physician)
	}
	if record.Confidence != 88 {
		t.Errorf("confidence = %v, want 88", record.Confidence)
	}
}

func TestExtractFromImageUnreadable(t *testing.T) {
	svc := newPipeline(t, staticRecognizer{text: "abc", conf: 10})

	_, err := svc.ExtractFromImage(context.Background(), testImagePNG(t))
	if !errors.Is(err, prescription.ErrUnreadableText) {
		t.Fatalf("expected ErrUnreadableText, got %v", err)
	}
}

func TestExtractFromImageBadPayload(t *testing.T) {
	svc := newPipeline(t, staticRecognizer{text: "whatever", conf: 50})

	_, err := svc.ExtractFromImage(context.Background(), []byte("not an image"))
	if !errors.Is(err, prescription.ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestGrade(t *testing.T) {
	svc := &PrescriptionService{qualityCfg: testQualityConfig()}

	validated := prescription.StoredMedication{IsValidated: true}
	unvalidated := prescription.StoredMedication{}

	tests := []struct {
		name string
		conf float64
		meds []prescription.StoredMedication
		want prescription.Quality
	}{
		{"high confidence all validated", 95, []prescription.StoredMedication{validated, validated}, prescription.QualityExcellent},
		{"good", 80, []prescription.StoredMedication{validated, unvalidated}, prescription.QualityGood},
		{"moderate", 60, []prescription.StoredMedication{validated, unvalidated}, prescription.QualityModerate},
		{"poor", 40, []prescription.StoredMedication{unvalidated}, prescription.QualityPoor},
		{"no medications uses confidence only", 100, nil, prescription.QualityModerate},
		{"boundary excellent", 75, []prescription.StoredMedication{validated}, prescription.QualityExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.grade(tt.conf, tt.meds); got != tt.want {
				t.Errorf("grade(%v, %d meds) = %s, want %s", tt.conf, len(tt.meds), got, tt.want)
			}
		})
	}
}

func TestGradeMonotonicInConfidence(t *testing.T) {
	svc := &PrescriptionService{qualityCfg: testQualityConfig()}
	order := map[prescription.Quality]int{
		prescription.QualityPoor:      0,
		prescription.QualityModerate:  1,
		prescription.QualityGood:      2,
		prescription.QualityExcellent: 3,
	}

	prev := svc.grade(0, nil)
	for conf := 5.0; conf <= 100; conf += 5 {
		got := svc.grade(conf, nil)
		if order[got] < order[prev] {
			t.Fatalf("quality degraded from %s to %s as confidence rose to %v", prev, got, conf)
		}
		prev = got
	}
}

func TestWarnings(t *testing.T) {
	svc := &PrescriptionService{qualityCfg: testQualityConfig()}

	record := &prescription.Record{
		Confidence: 60,
		Medications: []prescription.StoredMedication{
			{IsValidated: true},
			{IsValidated: false},
			{IsValidated: false},
		},
	}

	warnings := svc.warnings(record)
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if warnings[0] != "Qualité OCR moyenne - Vérifiez attentivement les données" {
		t.Errorf("unexpected first warning %q", warnings[0])
	}
	if warnings[1] != "2 médicament(s) non trouvé(s) dans la base - Vérifiez l'orthographe" {
		t.Errorf("unexpected second warning %q", warnings[1])
	}

	record.Confidence = 90
	record.Medications = []prescription.StoredMedication{{IsValidated: true}}
	if warnings := svc.warnings(record); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestRecordLookupsWithoutArchive(t *testing.T) {
	svc := newPipeline(t, staticRecognizer{})

	if _, err := svc.ListRecords(context.Background(), &prescription.ListRecordsQuery{}); !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("ListRecords: expected ErrArchiveDisabled, got %v", err)
	}
}
