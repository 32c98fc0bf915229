// Package classify implements deterministic feature extraction and
// document-type classification for contest entry text. Its output is
// authoritative: advisory signals from other sources are reconciled
// against it, never the other way around.
package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LabelKey identifies a semantic metadata field on an entry form.
type LabelKey string

// Label keys for the entry form fields.
const (
	LabelName     LabelKey = "name"
	LabelSchool   LabelKey = "school"
	LabelGrade    LabelKey = "grade"
	LabelGuardian LabelKey = "guardian_name"
	LabelPhone    LabelKey = "guardian_phone"
	LabelEmail    LabelKey = "guardian_email"
	LabelCity     LabelKey = "city"
	LabelTitle    LabelKey = "title"
	LabelEssay    LabelKey = "essay"
)

// FieldLabels are the label keys that map to extractable metadata fields.
// LabelEssay is excluded: the essay body comes from segmentation, not
// label-window extraction.
var FieldLabels = []LabelKey{
	LabelName,
	LabelSchool,
	LabelGrade,
	LabelGuardian,
	LabelPhone,
	LabelEmail,
	LabelCity,
	LabelTitle,
}

// Alias lists are stored folded (see Fold) so a single folded pass over
// input text matches both languages simultaneously. English and Spanish
// aliases are kept separate only to count language markers; matching
// always unions them.
var englishAliases = map[LabelKey][]string{
	LabelName:     {"name", "student name", "entrant name", "full name"},
	LabelSchool:   {"school", "organization", "school name", "school/organization"},
	LabelGrade:    {"grade", "grade level", "level"},
	LabelGuardian: {"parent/guardian", "parent", "guardian", "parent or guardian"},
	LabelPhone:    {"phone", "phone number", "tel", "telephone"},
	LabelEmail:    {"email", "e-mail", "email address"},
	LabelCity:     {"city", "city/state", "town"},
	LabelTitle:    {"title", "essay title"},
	LabelEssay:    {"essay", "composition", "essay text"},
}

var spanishAliases = map[LabelKey][]string{
	LabelName:     {"nombre", "nombre del estudiante", "nombre completo"},
	LabelSchool:   {"escuela", "colegio", "organizacion", "nombre de la escuela"},
	LabelGrade:    {"grado", "nivel", "curso", "nivel de grado"},
	LabelGuardian: {"padre o tutor", "padre", "madre", "tutor", "padre/tutor"},
	LabelPhone:    {"telefono", "numero de telefono"},
	LabelEmail:    {"correo", "correo electronico"},
	LabelCity:     {"ciudad", "ciudad/estado", "pueblo"},
	LabelTitle:    {"titulo", "titulo del ensayo"},
	LabelEssay:    {"ensayo", "composicion", "texto del ensayo"},
}

var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes text for bilingual comparison: diacritics stripped,
// lowercased. "Teléfono" and "telefono" fold to the same string.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransform, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Aliases returns the folded alias list for a label key, both languages unioned.
func Aliases(key LabelKey) []string {
	out := make([]string, 0, len(englishAliases[key])+len(spanishAliases[key]))
	out = append(out, englishAliases[key]...)
	out = append(out, spanishAliases[key]...)
	return out
}

// MatchLabel reports the label key a line carries, if any. A line carries
// a label when, after folding, it begins with a known alias followed by a
// separator, whitespace, or nothing at all. Longer aliases win over
// shorter ones so "grade level" is not consumed as a bare "grade" prefix
// with a spurious remainder.
func MatchLabel(line string) (LabelKey, bool) {
	folded := strings.TrimSpace(Fold(line))
	if folded == "" {
		return "", false
	}

	var (
		best    LabelKey
		bestLen int
		found   bool
	)

	for _, key := range allLabels {
		for _, alias := range Aliases(key) {
			if !aliasAtStart(folded, alias) {
				continue
			}
			if len(alias) > bestLen {
				best = key
				bestLen = len(alias)
				found = true
			}
		}
	}

	return best, found
}

var allLabels = append(append([]LabelKey{}, FieldLabels...), LabelEssay)

// aliasAtStart reports whether the folded line begins with the alias at a
// word boundary.
func aliasAtStart(folded, alias string) bool {
	if !strings.HasPrefix(folded, alias) {
		return false
	}
	rest := folded[len(alias):]
	if rest == "" {
		return true
	}
	r := rune(rest[0])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
