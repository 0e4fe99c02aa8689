package extraction

import "regexp"

// Field identifies one semantic field of a patient record.
type Field string

// Extracted fields, in the order they are reported.
const (
	FieldName           Field = "name"
	FieldDNI            Field = "dni"
	FieldSocialSecurity Field = "socialSecurity"
	FieldDiagnosis      Field = "diagnosis"
)

// Fields lists every field in reporting order.
var Fields = []Field{FieldName, FieldDNI, FieldSocialSecurity, FieldDiagnosis}

// Rule is one case-insensitive pattern for a field.
// The first capture group holds the value.
type Rule struct {
	Field   Field
	Pattern *regexp.Regexp
}

// Rule order within a field is significant.
var defaultRules = []Rule{
	{FieldName, regexp.MustCompile(`(?i)(?:nombre\s*(?:y\s*apellido|completo)?)\s*[:|-]\s*(.+)`)},
	{FieldName, regexp.MustCompile(`(?i)(?:apellido\s*y\s*nombre)\s*[:|-]\s*(.+)`)},
	{FieldName, regexp.MustCompile(`(?i)(?:paciente)\s*[:|-]\s*(.+)`)},

	{FieldDNI, regexp.MustCompile(`(?i)(?:d\.?n\.?i\.?|documento)\s*[:|\-\s]\s*([\d.]+)`)},
	{FieldDNI, regexp.MustCompile(`(?i)(?:n[°ºo]?\s*(?:de\s*)?(?:doc|documento))\s*[:|-]\s*([\d.]+)`)},

	{FieldSocialSecurity, regexp.MustCompile(`(?i)(?:obra\s*social|prepaga|cobertura)\s*[:|-]\s*(.+)`)},
	{FieldSocialSecurity, regexp.MustCompile(`(?i)(?:o\.?\s*s\.?)\s*[:|-]\s*(.+)`)},

	{FieldDiagnosis, regexp.MustCompile(`(?i)(?:diagn[oó]stico|dx)\s*[:|-]\s*(.+)`)},
	{FieldDiagnosis, regexp.MustCompile(`(?i)(?:motivo\s*de\s*(?:internaci[oó]n|ingreso|consulta))\s*[:|-]\s*(.+)`)},
}

// DefaultRules returns a copy of the built-in rule table in priority order.
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}
