// Package segment splits raw extracted text into a metadata block and a
// body block. The boundary is located by bilingual label anchors; when no
// anchor appears within the scan window, a fixed-line fallback split
// biased toward over-including metadata applies. An oversized metadata
// block is harmless noise filtered downstream; an empty body is a
// validation concern, not a segmentation error.
package segment

import (
	"strings"

	"github.com/jbony2888/entryflow/internal/classify"
)

const (
	// anchorWindow bounds how many leading lines are scanned for label anchors.
	anchorWindow = 40
	// fallbackBoundary is the fixed split line used when no anchor is found.
	fallbackBoundary = 25
	// valueContinuation is how many non-label lines after the last label
	// are still treated as metadata values.
	valueContinuation = 2
)

// Split divides text into metadata and body blocks. The outputs are never
// nil; empty input yields two empty strings.
func Split(text string) (metadata, body string) {
	if strings.TrimSpace(text) == "" {
		return "", ""
	}

	lines := strings.Split(text, "\n")
	boundary := locateBoundary(lines)

	metadata = strings.TrimRight(strings.Join(lines[:boundary], "\n"), "\n ")
	body = strings.TrimSpace(strings.Join(lines[boundary:], "\n"))
	return metadata, body
}

// locateBoundary returns the index of the first body line. Preference
// order: the line after an essay anchor, the line after the last label
// line plus its value continuation, then the fixed fallback split.
func locateBoundary(lines []string) int {
	window := min(anchorWindow, len(lines))
	lastLabel := -1

	for i := 0; i < window; i++ {
		key, ok := classify.MatchLabel(lines[i])
		if !ok {
			continue
		}
		if key == classify.LabelEssay {
			return i + 1
		}
		lastLabel = i
	}

	if lastLabel >= 0 {
		if classify.InlineValue(lines[lastLabel]) != "" {
			return skipBlank(lines, lastLabel+1)
		}
		return extendOverValues(lines, lastLabel+1)
	}

	return min(fallbackBoundary, len(lines))
}

// extendOverValues advances the boundary past value lines that follow the
// last label, so "Grade:" on one line and "5" on the next both land in
// the metadata block.
func extendOverValues(lines []string, boundary int) int {
	extended := 0
	for boundary < len(lines) && extended < valueContinuation {
		line := strings.TrimSpace(lines[boundary])
		if line == "" {
			break
		}
		if _, isLabel := classify.MatchLabel(line); isLabel {
			break
		}
		boundary++
		extended++
	}

	return skipBlank(lines, boundary)
}

// skipBlank swallows blank separator lines so the body starts at real content.
func skipBlank(lines []string, boundary int) int {
	for boundary < len(lines) && strings.TrimSpace(lines[boundary]) == "" {
		boundary++
	}
	return boundary
}
