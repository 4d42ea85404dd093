package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/config"
	"github.com/carelink/carelink-ai/internal/domain/prescription"
	"github.com/carelink/carelink-ai/internal/extract"
	"github.com/carelink/carelink-ai/internal/ocr"
	"github.com/carelink/carelink-ai/internal/validate"
	"github.com/carelink/carelink-ai/pkg/metrics"
)

// PrescriptionService runs the full extraction pipeline: preprocess,
// recognize, extract entities, validate medications and assemble the final
// record. Archiving is optional; when no repository is configured records
// are only returned to the caller.
type PrescriptionService struct {
	preprocessor *ocr.Preprocessor
	recognizer   ocr.Recognizer
	extractor    *extract.Extractor
	validator    *validate.Validator
	repo         prescription.Repository
	archiver     *ArchiveService
	ocrCfg       config.OCRConfig
	qualityCfg   config.QualityConfig
	metrics      *metrics.Collector
	log          *zap.Logger
}

func NewPrescriptionService(
	preprocessor *ocr.Preprocessor,
	recognizer ocr.Recognizer,
	extractor *extract.Extractor,
	validator *validate.Validator,
	repo prescription.Repository,
	archiver *ArchiveService,
	ocrCfg config.OCRConfig,
	qualityCfg config.QualityConfig,
	collector *metrics.Collector,
	log *zap.Logger,
) *PrescriptionService {
	return &PrescriptionService{
		preprocessor: preprocessor,
		recognizer:   recognizer,
		extractor:    extractor,
		validator:    validator,
		repo:         repo,
		archiver:     archiver,
		ocrCfg:       ocrCfg,
		qualityCfg:   qualityCfg,
		metrics:      collector,
		log:          log,
	}
}

// ExtractFromImage turns a scanned prescription into a structured record.
// Images that decode but yield fewer readable characters than the configured
// minimum are rejected with prescription.ErrUnreadableText.
func (s *PrescriptionService) ExtractFromImage(ctx context.Context, data []byte) (*prescription.Record, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", prescription.ErrUnsupportedFileType, err)
	}

	processed := s.preprocessor.Process(img)

	recognized, err := s.recognizer.Recognize(ctx, processed)
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	if len(strings.TrimSpace(recognized.Text)) < s.ocrCfg.MinReadableChars {
		return nil, prescription.ErrUnreadableText
	}

	entities := s.extractor.Extract(recognized.Text)

	medications := make([]prescription.StoredMedication, 0, len(entities.Medications))
	for _, med := range entities.Medications {
		result := s.validator.Validate(med.Name)
		medications = append(medications, prescription.StoredMedication{
			Name:           med.Name,
			NormalizedName: result.NormalizedName,
			Dosage:         med.Dosage,
			Posology:       med.Posology,
			Duration:       med.Duration,
			Confidence:     med.Confidence,
			IsValidated:    result.IsValid,
		})

		s.metrics.MedicationsTotal.WithLabelValues(strconv.FormatBool(result.IsValid)).Inc()
		if !result.IsValid && len(result.Suggestions) > 0 {
			s.metrics.ValidationFuzzyHits.Inc()
		}
	}

	record := &prescription.Record{
		ID:          uuid.New(),
		CreatedAt:   time.Now().UTC(),
		FullText:    recognized.Text,
		Medications: medications,
		Physician:   entities.Physician,
		Confidence:  recognized.Confidence,
		Warnings:    []string{},
	}

	if entities.PrescriptionDate != nil {
		prescribed := entities.PrescriptionDate.Format("2006-01-02")
		validUntil := entities.PrescriptionDate.Add(prescription.ValidityPeriod).Format("2006-01-02")
		record.PrescribedOn = &prescribed
		record.ValidUntil = &validUntil
	}

	record.Quality = s.grade(recognized.Confidence, medications)
	record.Warnings = s.warnings(record)

	s.metrics.OCRConfidence.Observe(recognized.Confidence)
	s.metrics.ExtractionsTotal.WithLabelValues(string(record.Quality)).Inc()

	s.log.Info("prescription extracted",
		zap.String("record_id", record.ID.String()),
		zap.Int("medications", len(medications)),
		zap.Float64("confidence", record.Confidence),
		zap.String("quality", string(record.Quality)),
	)

	if s.archiver != nil {
		s.archiver.StoreAsync(record)
	}

	return record, nil
}

// grade blends recognizer confidence with the fraction of medications that
// validated against the catalog. A record without medications is graded on
// confidence alone, with a zero validation component.
func (s *PrescriptionService) grade(confidence float64, meds []prescription.StoredMedication) prescription.Quality {
	ratio := 0.0
	if len(meds) > 0 {
		validated := 0
		for _, m := range meds {
			if m.IsValidated {
				validated++
			}
		}
		ratio = float64(validated) / float64(len(meds))
	}

	score := confidence*s.qualityCfg.ConfidenceWeight + ratio*100*s.qualityCfg.ValidationWeight

	switch {
	case score >= s.qualityCfg.ExcellentThreshold:
		return prescription.QualityExcellent
	case score >= s.qualityCfg.GoodThreshold:
		return prescription.QualityGood
	case score >= s.qualityCfg.ModerateThreshold:
		return prescription.QualityModerate
	default:
		return prescription.QualityPoor
	}
}

func (s *PrescriptionService) warnings(r *prescription.Record) []string {
	warnings := []string{}
	if r.Confidence < s.qualityCfg.LowConfidenceWarn {
		warnings = append(warnings, "Qualité OCR moyenne - Vérifiez attentivement les données")
	}
	if n := r.UnvalidatedCount(); n > 0 {
		warnings = append(warnings,
			fmt.Sprintf("%d médicament(s) non trouvé(s) dans la base - Vérifiez l'orthographe", n))
	}
	return warnings
}

// ValidateMedication checks a single medication name against the catalog.
func (s *PrescriptionService) ValidateMedication(name string) *prescription.ValidationResult {
	return s.validator.Validate(name)
}

// GetRecord fetches an archived record by id.
func (s *PrescriptionService) GetRecord(ctx context.Context, id uuid.UUID) (*prescription.Record, error) {
	if s.repo == nil {
		return nil, ErrArchiveDisabled
	}
	return s.repo.GetByID(ctx, id)
}

// ListRecords pages through archived records, newest first.
func (s *PrescriptionService) ListRecords(ctx context.Context, q *prescription.ListRecordsQuery) (*prescription.PagedRecords, error) {
	if s.repo == nil {
		return nil, ErrArchiveDisabled
	}
	return s.repo.List(ctx, q)
}
