// Package health defines the patient-level data exchanged with the risk
// prediction and anomaly detection endpoints.
package health

// RiskLevel is the coarse classification of a member's overall health risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// MemberHealthData is the structured counter snapshot describing a family
// member, as maintained by the desktop application.
type MemberHealthData struct {
	Age                      int               `json:"age"`
	Vaccinations             VaccinationCounts `json:"vaccinations"`
	Appointments             AppointmentCounts `json:"appointments"`
	Treatments               TreatmentCounts   `json:"treatments"`
	Allergies                AllergyCounts     `json:"allergies"`
	DaysSinceLastAppointment int               `json:"days_since_last_appointment"`
}

type VaccinationCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

type AppointmentCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type TreatmentCounts struct {
	Active   int `json:"active"`
	LowStock int `json:"low_stock"`
	Expiring int `json:"expiring"`
}

type AllergyCounts struct {
	Total  int `json:"total"`
	Severe int `json:"severe"`
}

// Missing returns the number of vaccinations not yet completed.
func (v VaccinationCounts) Missing() int {
	if m := v.Total - v.Completed; m > 0 {
		return m
	}
	return 0
}

// RiskFactor is one identified contributor to a member's risk score.
type RiskFactor struct {
	Factor      string  `json:"factor"`
	Description string  `json:"description"`
	Importance  float64 `json:"importance"`
	Severity    string  `json:"severity"`
}

// RiskPrediction is the outcome of a health-risk assessment.
type RiskPrediction struct {
	RiskLevel       RiskLevel    `json:"risk_level"`
	RiskScore       float64      `json:"risk_score"`
	Confidence      float64      `json:"confidence"`
	RiskFactors     []RiskFactor `json:"risk_factors"`
	Recommendations []string     `json:"recommendations"`
	Method          string       `json:"method"`
}

// AnomalyResult flags unusual patterns in a member's records. The score is
// in [-1,1]; negative values indicate an anomaly.
type AnomalyResult struct {
	IsAnomaly      bool     `json:"is_anomaly"`
	AnomalyScore   float64  `json:"anomaly_score"`
	AnomalyDetails []string `json:"anomaly_details"`
}

// PatientProfile describes a patient for per-category risk scoring.
type PatientProfile struct {
	Age         int      `json:"age"`
	BMI         float64  `json:"imc"`
	Antecedents []string `json:"antecedents"`
}
