package classify

import "strings"

// DocType is the closed enumeration of document types the pipeline
// recognizes. External strings never enter the domain directly; they pass
// through ParseDocType, which maps anything unrecognized to DocUnknown.
type DocType string

// Document type codes.
const (
	DocFormFilled        DocType = "FORM_FILLED"
	DocFormBlankTemplate DocType = "FORM_BLANK_TEMPLATE"
	DocBodyWithHeader    DocType = "BODY_WITH_HEADER"
	DocBodyOnly          DocType = "BODY_ONLY"
	DocMultiEntry        DocType = "MULTI_ENTRY"
	DocUnknown           DocType = "UNKNOWN"
)

var docTypes = map[string]DocType{
	string(DocFormFilled):        DocFormFilled,
	string(DocFormBlankTemplate): DocFormBlankTemplate,
	string(DocBodyWithHeader):    DocBodyWithHeader,
	string(DocBodyOnly):          DocBodyOnly,
	string(DocMultiEntry):        DocMultiEntry,
	string(DocUnknown):           DocUnknown,
}

// ParseDocType converts an arbitrary string to a DocType. Matching is
// case-insensitive; unrecognized input yields DocUnknown.
func ParseDocType(s string) DocType {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if t, ok := docTypes[normalized]; ok {
		return t
	}
	return DocUnknown
}

// Classify maps a feature set to a document type. Pure function: identical
// features always yield the identical code.
func Classify(f Features) DocType {
	switch {
	case f.WordCount == 0:
		return DocUnknown
	case f.EntryRepeats >= 2:
		return DocMultiEntry
	case f.FilledLabels == 0 && (f.DistinctLabels >= 3 || f.BlankMarkers >= 3):
		return DocFormBlankTemplate
	case f.DistinctLabels >= 3:
		return DocFormFilled
	case f.DistinctLabels >= 1:
		return DocBodyWithHeader
	default:
		return DocBodyOnly
	}
}
