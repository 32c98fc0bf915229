package classify

import "strings"

// Features is the deterministic feature set extracted from entry text.
// Identical text always produces identical features.
type Features struct {
	LabelHits      int `json:"label_hits"`
	DistinctLabels int `json:"distinct_labels"`
	FilledLabels   int `json:"filled_labels"`
	BlankMarkers   int `json:"blank_markers"`
	EnglishMarkers int `json:"english_markers"`
	SpanishMarkers int `json:"spanish_markers"`
	WordCount      int `json:"word_count"`
	EntryRepeats   int `json:"entry_repeats"`
}

// ExtractFeatures walks the text once and accumulates label, language,
// and fill statistics. Label detection is bilingual: both alias sets are
// checked on every line, never per-language branches.
func ExtractFeatures(text string) Features {
	var f Features
	f.WordCount = len(strings.Fields(text))

	lines := strings.Split(text, "\n")
	seen := make(map[LabelKey]bool)

	for i, line := range lines {
		if countBlankMarker(line) {
			f.BlankMarkers++
		}

		key, ok := MatchLabel(line)
		if !ok {
			continue
		}

		f.LabelHits++
		if !seen[key] {
			seen[key] = true
			f.DistinctLabels++
		}
		if key == LabelName {
			f.EntryRepeats++
		}
		if labelFilled(lines, i) {
			f.FilledLabels++
		}
	}

	f.EnglishMarkers, f.SpanishMarkers = languageMarkers(text)
	return f
}

// labelFilled reports whether the label line at index i carries a value,
// either inline after a separator or on the immediately following line.
func labelFilled(lines []string, i int) bool {
	if v := InlineValue(lines[i]); v != "" {
		return true
	}
	if i+1 < len(lines) {
		next := strings.TrimSpace(lines[i+1])
		if _, isLabel := MatchLabel(next); !isLabel && CleanValue(next) != "" {
			return true
		}
	}
	return false
}

// InlineValue returns the cleaned text following a label separator on the
// same line, or empty when there is no separator or only blank fill.
func InlineValue(line string) string {
	idx := strings.IndexAny(line, ":：=")
	if idx < 0 {
		return ""
	}
	return CleanValue(line[idx+1:])
}

// CleanValue trims whitespace and blank-fill artifacts (underscore and dot
// runs left by empty form fields). A value that is nothing but fill
// collapses to empty.
func CleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "_.…")
	return strings.TrimSpace(s)
}

func countBlankMarker(line string) bool {
	return strings.Contains(line, "___")
}

var englishStopwords = []string{" the ", " and ", " of ", " is ", " to ", " my "}
var spanishStopwords = []string{" el ", " la ", " de ", " que ", " es ", " mi "}

func languageMarkers(text string) (english, spanish int) {
	folded := " " + Fold(strings.ReplaceAll(text, "\n", " ")) + " "

	for _, w := range englishStopwords {
		english += strings.Count(folded, w)
	}
	for _, w := range spanishStopwords {
		spanish += strings.Count(folded, w)
	}

	for _, list := range englishAliases {
		for _, alias := range list {
			if strings.Contains(folded, " "+alias) {
				english++
			}
		}
	}
	for _, list := range spanishAliases {
		for _, alias := range list {
			if strings.Contains(folded, " "+alias) {
				spanish++
			}
		}
	}

	return english, spanish
}
