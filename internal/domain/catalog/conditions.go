package catalog

// Severity is a coarse ordinal classification of a condition's urgency.
type Severity string

const (
	SeverityEmergency Severity = "emergency"
	SeverityUrgent    Severity = "urgent"
	SeverityWarning   Severity = "warning"
	SeverityNormal    Severity = "normal"
)

// Condition is one entry of the medical condition catalog used for symptom
// similarity ranking. Symptoms is the canonical free-text description that
// gets embedded once per process lifetime.
type Condition struct {
	Name     string   `json:"name"`
	Symptoms string   `json:"symptoms"`
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
}

// Conditions returns the static condition catalog. The slice is shared;
// callers must not mutate it.
func Conditions() []Condition {
	return conditions
}

var conditions = []Condition{
	{
		Name:     "Infarctus du myocarde",
		Symptoms: "douleur thoracique intense, oppression poitrine, essoufflement, nausées, sueurs froides",
		Severity: SeverityEmergency,
		Category: "cardiovasculaire",
	},
	{
		Name:     "Angine de poitrine",
		Symptoms: "douleur thoracique à l'effort, oppression, essoufflement modéré",
		Severity: SeverityUrgent,
		Category: "cardiovasculaire",
	},
	{
		Name:     "Pneumonie",
		Symptoms: "fièvre élevée, toux productive, douleur thoracique, essoufflement, fatigue",
		Severity: SeverityUrgent,
		Category: "respiratoire",
	},
	{
		Name:     "Bronchite aiguë",
		Symptoms: "toux persistante, fièvre modérée, fatigue, douleur thoracique légère",
		Severity: SeverityWarning,
		Category: "respiratoire",
	},
	{
		Name:     "Asthme",
		Symptoms: "essoufflement, sifflement respiratoire, oppression thoracique, toux sèche",
		Severity: SeverityWarning,
		Category: "respiratoire",
	},
	{
		Name:     "Gastro-entérite",
		Symptoms: "diarrhée, vomissements, douleurs abdominales, fièvre modérée, fatigue",
		Severity: SeverityWarning,
		Category: "digestif",
	},
	{
		Name:     "Appendicite",
		Symptoms: "douleur abdominale intense fosse iliaque droite, nausées, vomissements, fièvre",
		Severity: SeverityEmergency,
		Category: "digestif",
	},
	{
		Name:     "Migraine",
		Symptoms: "douleur intense tête unilatérale, nausées, sensibilité lumière, troubles visuels",
		Severity: SeverityWarning,
		Category: "neurologique",
	},
	{
		Name:     "AVC (Accident Vasculaire Cérébral)",
		Symptoms: "faiblesse visage asymétrique, difficulté parler, paralysie bras jambe, confusion",
		Severity: SeverityEmergency,
		Category: "neurologique",
	},
	{
		Name:     "Grippe",
		Symptoms: "fièvre élevée, frissons, courbatures, fatigue intense, maux tête, toux",
		Severity: SeverityNormal,
		Category: "infectieux",
	},
	{
		Name:     "COVID-19",
		Symptoms: "fièvre, toux sèche, fatigue, perte goût odorat, essoufflement, courbatures",
		Severity: SeverityWarning,
		Category: "infectieux",
	},
	{
		Name:     "Allergie respiratoire",
		Symptoms: "éternuements, nez qui coule, yeux qui piquent, toux légère",
		Severity: SeverityNormal,
		Category: "allergique",
	},
	{
		Name:     "Anaphylaxie",
		Symptoms: "difficultés respiratoires, gonflement visage gorge, urticaire généralisée, chute tension",
		Severity: SeverityEmergency,
		Category: "allergique",
	},
	{
		Name:     "Diabète décompensé",
		Symptoms: "soif intense, urines fréquentes, fatigue extrême, vision floue, perte poids",
		Severity: SeverityUrgent,
		Category: "métabolique",
	},
	{
		Name:     "Hypoglycémie",
		Symptoms: "tremblements, sueurs, confusion, faiblesse, palpitations, faim intense",
		Severity: SeverityUrgent,
		Category: "métabolique",
	},
}
