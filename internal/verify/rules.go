package verify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jbony2888/entryflow/internal/classify"
)

// narrowWindow is how many lines after a label line are searched for a
// value before the scan widens.
const narrowWindow = 2

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12,
	"primero": 1, "primer": 1, "segundo": 2, "tercero": 3, "tercer": 3,
	"cuarto": 4, "quinto": 5, "sexto": 6, "septimo": 7, "octavo": 8,
	"noveno": 9, "decimo": 10, "undecimo": 11, "duodecimo": 12,
}

var reLevelToken = regexp.MustCompile(`\b([1-9]|1[0-2])(?:st|nd|rd|th|o)?\b`)

// ExtractFields runs rule-based extraction over the metadata block. It is
// the primary extractor when no AI signal exists and the fallback when a
// suggested value fails verification.
func ExtractFields(metadata string) map[classify.LabelKey]string {
	lines := strings.Split(metadata, "\n")
	out := make(map[classify.LabelKey]string)

	for _, key := range classify.FieldLabels {
		if value, ok := extractField(lines, key); ok {
			out[key] = value
		}
	}
	return out
}

// extractField locates the label line for key and resolves its value in
// priority order: inline separator value, then the following one to two
// non-label lines, then (for the level field) ordinal or digit tokens
// with a widened rescan when the narrow pass finds nothing.
func extractField(lines []string, key classify.LabelKey) (string, bool) {
	labelAt := -1
	for i, line := range lines {
		if matched, ok := classify.MatchLabel(line); ok && matched == key {
			labelAt = i
			break
		}
	}
	if labelAt < 0 {
		return "", false
	}

	if value := classify.InlineValue(lines[labelAt]); value != "" {
		return value, true
	}

	for i := labelAt + 1; i <= labelAt+narrowWindow && i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if _, isLabel := classify.MatchLabel(line); isLabel {
			break
		}
		if value := classify.CleanValue(line); value != "" {
			return value, true
		}
	}

	if key == classify.LabelGrade {
		if value, ok := scanLevel(lines, labelAt, labelAt+narrowWindow); ok {
			return value, true
		}
		// widened pass over the whole metadata block
		return scanLevel(lines, 0, len(lines)-1)
	}

	return "", false
}

// scanLevel searches lines[from..to] for an ordinal word or bare digit
// token and normalizes it to a digit string.
func scanLevel(lines []string, from, to int) (string, bool) {
	if from < 0 {
		from = 0
	}
	if to >= len(lines) {
		to = len(lines) - 1
	}

	for i := from; i <= to; i++ {
		folded := classify.Fold(lines[i])
		for _, token := range strings.Fields(folded) {
			token = strings.Trim(token, ".,;:()")
			if n, ok := ordinalWords[token]; ok {
				return strconv.Itoa(n), true
			}
		}
		if m := reLevelToken.FindStringSubmatch(folded); m != nil {
			return m[1], true
		}
	}
	return "", false
}
