package extraction

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.FieldExtractor = (*Extractor)(nil)

// Extractor applies an ordered rule table to text.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	rules map[Field][]*regexp.Regexp
}

// New creates an Extractor over rules. With no rules, DefaultRules is used.
// Relative order of rules for the same field is kept.
func New(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = defaultRules
	}
	byField := make(map[Field][]*regexp.Regexp, len(Fields))
	for _, r := range rules {
		byField[r.Field] = append(byField[r.Field], r.Pattern)
	}
	return &Extractor{rules: byField}
}

// Extract returns the best-effort fields found in text.
func (e *Extractor) Extract(text string) domain.ExtractedFields {
	if strings.TrimSpace(text) == "" {
		return domain.ExtractedFields{}
	}
	return domain.ExtractedFields{
		Name:           e.Field(FieldName, text),
		DNI:            e.Field(FieldDNI, text),
		SocialSecurity: e.Field(FieldSocialSecurity, text),
		Diagnosis:      e.Field(FieldDiagnosis, text),
	}
}

// Field runs the rules of one field and returns the first non-empty capture.
func (e *Extractor) Field(field Field, text string) string {
	for _, re := range e.rules[field] {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
	}
	return ""
}

var documentExtension = regexp.MustCompile(`(?i)\.(docx?|pdf|xlsx?|odt|rtf)$`)

// NameFromFilename derives a fallback identity from a document name
// by stripping a known document extension.
func NameFromFilename(filename string) string {
	return strings.TrimSpace(documentExtension.ReplaceAllString(strings.TrimSpace(filename), ""))
}
