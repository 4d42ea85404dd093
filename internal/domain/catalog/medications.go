// Package catalog holds the static reference data shipped with the
// application: the French medication table and the medical condition
// catalog used by the symptom similarity service.
package catalog

import (
	"strings"
	"sync"
)

// Medication is one reference entry keyed by its commercial name.
type Medication struct {
	Name string `json:"nom"`
	// INN is the international non-proprietary name (DCI in French) of the
	// active substance.
	INN  string `json:"dci"`
	Form string `json:"forme"`
}

// Medications is the reference table of commercial medication names.
// Lookups are case-insensitive; mutation is guarded so runtime extension
// through Add is safe under concurrent validations.
type Medications struct {
	mu      sync.RWMutex
	byName  map[string]Medication // uppercase commercial name
	byLower map[string]Medication
}

// NewMedications loads the built-in French medication table.
// TODO: load the official CIS/Vidal export instead of the embedded subset.
func NewMedications() *Medications {
	m := &Medications{
		byName:  make(map[string]Medication, len(frenchMedications)),
		byLower: make(map[string]Medication, len(frenchMedications)),
	}
	for _, med := range frenchMedications {
		m.byName[med.Name] = med
		m.byLower[strings.ToLower(med.Name)] = med
	}
	return m
}

// Len returns the number of catalog entries.
func (m *Medications) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byName)
}

// Get looks up an entry by exact uppercase commercial name.
func (m *Medications) Get(upperName string) (Medication, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	med, ok := m.byName[upperName]
	return med, ok
}

// GetFold looks up an entry ignoring case and French diacritics, so that
// "paracétamol" resolves to the PARACETAMOL entry.
func (m *Medications) GetFold(name string) (Medication, bool) {
	folded := strings.ToUpper(Fold(strings.TrimSpace(name)))
	m.mu.RLock()
	defer m.mu.RUnlock()
	med, ok := m.byName[folded]
	return med, ok
}

// GetInsensitive looks up an entry ignoring case only.
func (m *Medications) GetInsensitive(name string) (Medication, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	med, ok := m.byLower[strings.ToLower(name)]
	return med, ok
}

// Names returns all uppercase commercial names, for fuzzy ranking.
func (m *Medications) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	return names
}

// Add registers a medication at runtime. Existing entries are replaced.
func (m *Medications) Add(name, inn, form string) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	med := Medication{Name: upper, INN: inn, Form: form}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byName[upper] = med
	m.byLower[strings.ToLower(upper)] = med
}

// Fold strips the French diacritics that appear in medication and substance
// names. Catalog keys are stored unaccented uppercase.
func Fold(s string) string {
	return accentReplacer.Replace(s)
}

var accentReplacer = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a",
	"î", "i", "ï", "i",
	"ô", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c",
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"À", "A", "Â", "A",
	"Î", "I", "Ï", "I",
	"Ô", "O",
	"Ù", "U", "Û", "U", "Ü", "U",
	"Ç", "C",
)

// frenchMedications is the embedded subset of the most commonly prescribed
// French medications.
var frenchMedications = []Medication{
	// Antalgiques / anti-inflammatoires
	{Name: "DOLIPRANE", INN: "paracétamol", Form: "comprimé"},
	{Name: "PARACETAMOL", INN: "paracétamol", Form: "comprimé"},
	{Name: "EFFERALGAN", INN: "paracétamol", Form: "comprimé effervescent"},
	{Name: "DAFALGAN", INN: "paracétamol", Form: "comprimé"},
	{Name: "IBUPROFENE", INN: "ibuprofène", Form: "comprimé"},
	{Name: "ADVIL", INN: "ibuprofène", Form: "comprimé"},
	{Name: "NUROFEN", INN: "ibuprofène", Form: "comprimé"},
	{Name: "SPIFEN", INN: "ibuprofène", Form: "comprimé"},
	{Name: "ASPIRINE", INN: "acide acétylsalicylique", Form: "comprimé"},
	{Name: "KARDEGIC", INN: "acide acétylsalicylique", Form: "sachet"},
	{Name: "VOLTARENE", INN: "diclofénac", Form: "comprimé"},
	{Name: "KETOPROFENE", INN: "kétoprofène", Form: "comprimé"},
	{Name: "TRAMADOL", INN: "tramadol", Form: "comprimé"},
	{Name: "CODEINE", INN: "codéine", Form: "comprimé"},

	// Antibiotiques
	{Name: "AMOXICILLINE", INN: "amoxicilline", Form: "gélule"},
	{Name: "AUGMENTIN", INN: "amoxicilline + acide clavulanique", Form: "comprimé"},
	{Name: "CLAMOXYL", INN: "amoxicilline", Form: "gélule"},
	{Name: "AZITHROMYCINE", INN: "azithromycine", Form: "comprimé"},
	{Name: "ZITHROMAX", INN: "azithromycine", Form: "comprimé"},
	{Name: "CIPROFLOXACINE", INN: "ciprofloxacine", Form: "comprimé"},
	{Name: "OFLOXACINE", INN: "ofloxacine", Form: "comprimé"},

	// Cardiovasculaires
	{Name: "AMLODIPINE", INN: "amlodipine", Form: "comprimé"},
	{Name: "ATENOLOL", INN: "aténolol", Form: "comprimé"},
	{Name: "BISOPROLOL", INN: "bisoprolol", Form: "comprimé"},
	{Name: "RAMIPRIL", INN: "ramipril", Form: "comprimé"},
	{Name: "ENALAPRIL", INN: "énalapril", Form: "comprimé"},
	{Name: "LISINOPRIL", INN: "lisinopril", Form: "comprimé"},
	{Name: "ATORVASTATINE", INN: "atorvastatine", Form: "comprimé"},
	{Name: "SIMVASTATINE", INN: "simvastatine", Form: "comprimé"},
	{Name: "TAHOR", INN: "atorvastatine", Form: "comprimé"},
	{Name: "CRESTOR", INN: "rosuvastatine", Form: "comprimé"},
	{Name: "PLAVIX", INN: "clopidogrel", Form: "comprimé"},
	{Name: "PREVISCAN", INN: "fluindione", Form: "comprimé"},
	{Name: "COUMADINE", INN: "warfarine", Form: "comprimé"},

	// Diabète
	{Name: "METFORMINE", INN: "metformine", Form: "comprimé"},
	{Name: "GLUCOPHAGE", INN: "metformine", Form: "comprimé"},
	{Name: "DIAMICRON", INN: "gliclazide", Form: "comprimé"},
	{Name: "LANTUS", INN: "insuline glargine", Form: "injectable"},
	{Name: "NOVORAPID", INN: "insuline aspart", Form: "injectable"},

	// Gastro-intestinal
	{Name: "OMEPRAZOLE", INN: "oméprazole", Form: "gélule"},
	{Name: "MOPRAL", INN: "oméprazole", Form: "gélule"},
	{Name: "INEXIUM", INN: "ésoméprazole", Form: "comprimé"},
	{Name: "ESOMEPRAZOLE", INN: "ésoméprazole", Form: "comprimé"},
	{Name: "GAVISCON", INN: "alginate de sodium", Form: "suspension buvable"},
	{Name: "SMECTA", INN: "diosmectite", Form: "sachet"},
	{Name: "IMODIUM", INN: "lopéramide", Form: "gélule"},
	{Name: "MOTILIUM", INN: "dompéridone", Form: "comprimé"},
	{Name: "SPASFON", INN: "phloroglucinol", Form: "comprimé"},

	// Antihistaminiques / allergies
	{Name: "CETIRIZINE", INN: "cétirizine", Form: "comprimé"},
	{Name: "ZYRTEC", INN: "cétirizine", Form: "comprimé"},
	{Name: "AERIUS", INN: "desloratadine", Form: "comprimé"},
	{Name: "CLARITYNE", INN: "loratadine", Form: "comprimé"},
	{Name: "LORATADINE", INN: "loratadine", Form: "comprimé"},
	{Name: "POLARAMINE", INN: "dexchlorphéniramine", Form: "comprimé"},

	// Respiratoire
	{Name: "VENTOLINE", INN: "salbutamol", Form: "aérosol"},
	{Name: "SALBUTAMOL", INN: "salbutamol", Form: "aérosol"},
	{Name: "SERETIDE", INN: "salmétérol + fluticasone", Form: "aérosol"},
	{Name: "SYMBICORT", INN: "budésonide + formotérol", Form: "aérosol"},
	{Name: "TOPLEXIL", INN: "oxomémazine", Form: "sirop"},
	{Name: "HEXAPNEUMINE", INN: "hélicidine", Form: "sirop"},

	// Psychiatrie / neurologie
	{Name: "SEROPLEX", INN: "escitalopram", Form: "comprimé"},
	{Name: "DEROXAT", INN: "paroxétine", Form: "comprimé"},
	{Name: "PROZAC", INN: "fluoxétine", Form: "gélule"},
	{Name: "XANAX", INN: "alprazolam", Form: "comprimé"},
	{Name: "ALPRAZOLAM", INN: "alprazolam", Form: "comprimé"},
	{Name: "LEXOMIL", INN: "bromazépam", Form: "comprimé"},
	{Name: "TEMESTA", INN: "lorazépam", Form: "comprimé"},
	{Name: "STILNOX", INN: "zolpidem", Form: "comprimé"},
	{Name: "LYRICA", INN: "prégabaline", Form: "gélule"},
	{Name: "NEURONTIN", INN: "gabapentine", Form: "gélule"},

	// Vitamines / compléments
	{Name: "TARDYFERON", INN: "fer", Form: "comprimé"},
	{Name: "SPECIAFOLDINE", INN: "acide folique", Form: "comprimé"},
	{Name: "UVESTEROL", INN: "vitamine D", Form: "gouttes"},
	{Name: "ZYMAD", INN: "vitamine D", Form: "gouttes"},
	{Name: "MAGNESIUM", INN: "magnésium", Form: "comprimé"},
	{Name: "CALCIUM", INN: "calcium", Form: "comprimé"},

	// Dermatologie
	{Name: "DIPROSONE", INN: "bétaméthasone", Form: "crème"},
	{Name: "DAIVOBET", INN: "calcipotriol + bétaméthasone", Form: "gel"},
	{Name: "CUTACNYL", INN: "peroxyde de benzoyle", Form: "gel"},
	{Name: "DIFFERINE", INN: "adapalène", Form: "gel"},

	// Ophtalmologie
	{Name: "MAXIDEX", INN: "dexaméthasone", Form: "collyre"},
	{Name: "AZYTER", INN: "azithromycine", Form: "collyre"},
	{Name: "TOBREX", INN: "tobramycine", Form: "collyre"},

	// Autres
	{Name: "LEVOTHYROX", INN: "lévothyroxine", Form: "comprimé"},
	{Name: "L-THYROXINE", INN: "lévothyroxine", Form: "comprimé"},
	{Name: "COLCHICINE", INN: "colchicine", Form: "comprimé"},
	{Name: "ALLOPURINOL", INN: "allopurinol", Form: "comprimé"},
}
