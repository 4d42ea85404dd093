package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Quality is the overall grade assigned to an extraction, blending
// recognizer confidence with the fraction of medications that validated
// against the catalog. The French labels are part of the wire contract
// consumed by the desktop application.
type Quality string

const (
	QualityExcellent Quality = "excellente"
	QualityGood      Quality = "bonne"
	QualityModerate  Quality = "moyenne"
	QualityPoor      Quality = "faible"
)

// ValidityPeriod is the legal validity of a French prescription counted
// from its issue date.
const ValidityPeriod = 90 * 24 * time.Hour

// BoundingBox locates a recognized fragment on the source image.
type BoundingBox struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Fragment is a single unit of recognized text with the recognizer's
// confidence in [0,1].
type Fragment struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"bbox"`
}

// RecognizedText is the immutable output of one recognition pass:
// the concatenated text plus per-fragment detail. Confidence is the mean
// fragment confidence scaled to 0-100.
type RecognizedText struct {
	Text       string     `json:"text"`
	Confidence float64    `json:"confidence"`
	Fragments  []Fragment `json:"words"`
}

// ExtractedMedication is one medication entry pulled out of the raw text.
// All fields besides the name are optional; absence is represented as nil
// rather than treated as an error.
type ExtractedMedication struct {
	Name       string  `json:"nom"`
	Dosage     *string `json:"dosage"`
	Posology   *string `json:"posologie"`
	Duration   *string `json:"duree"`
	Confidence float64 `json:"confidence"`
}

// ValidationResult is the outcome of checking a medication name against the
// reference catalog. IsValid is true only for exact or case-insensitive
// matches; fuzzy matches populate suggestions without confirming validity.
type ValidationResult struct {
	IsValid        bool     `json:"is_valid"`
	NormalizedName *string  `json:"nom_corrige"`
	Suggestions    []string `json:"suggestions"`
	INN            *string  `json:"dci"`
}

// Entities is the structured output of the medical entity extractor.
type Entities struct {
	Medications      []ExtractedMedication
	PrescriptionDate *time.Time
	Physician        *string
}

// Record is a fully assembled prescription extraction. It doubles as the
// persistence model when archiving is enabled; stateless deployments only
// ever serialize it to JSON.
type Record struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	FullText    string             `gorm:"column:full_text;type:text;not null" json:"texte_complet"`
	Medications []StoredMedication `gorm:"foreignKey:RecordID" json:"medicaments"`

	// ISO dates (YYYY-MM-DD). ValidUntil, when present, is always
	// PrescribedOn plus 90 days.
	PrescribedOn *string `gorm:"column:prescribed_on;type:varchar(10)" json:"date_ordonnance"`
	ValidUntil   *string `gorm:"column:valid_until;type:varchar(10)" json:"date_validite"`

	Physician *string `gorm:"column:physician;type:varchar(255)" json:"medecin"`
	Patient   *string `gorm:"column:patient;type:varchar(255)" json:"patient"`

	Confidence float64  `gorm:"column:confidence" json:"confidence_globale"`
	Quality    Quality  `gorm:"column:quality;type:varchar(20);index" json:"qualite"`
	Warnings   []string `gorm:"column:warnings;serializer:json" json:"warnings"`
}

func (Record) TableName() string {
	return "ocr.records"
}

// StoredMedication is a validated medication entry attached to a Record.
type StoredMedication struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	RecordID uuid.UUID `gorm:"column:record_id;type:uuid;index" json:"-"`

	Name           string  `gorm:"column:name;type:varchar(255);not null" json:"nom"`
	NormalizedName *string `gorm:"column:normalized_name;type:varchar(255)" json:"nom_normalise"`
	Dosage         *string `gorm:"column:dosage;type:varchar(100)" json:"dosage"`
	Posology       *string `gorm:"column:posology;type:varchar(255)" json:"posologie"`
	Duration       *string `gorm:"column:duration;type:varchar(100)" json:"duree"`
	Confidence     float64 `gorm:"column:confidence" json:"confidence"`
	IsValidated    bool    `gorm:"column:is_validated" json:"is_validated"`
}

func (StoredMedication) TableName() string {
	return "ocr.record_medications"
}

// UnvalidatedCount returns how many medications failed catalog validation.
func (r *Record) UnvalidatedCount() int {
	n := 0
	for _, m := range r.Medications {
		if !m.IsValidated {
			n++
		}
	}
	return n
}

type ListRecordsQuery struct {
	Page     int
	PageSize int
}

type PagedRecords struct {
	Records    []*Record `json:"records"`
	TotalCount int64     `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
