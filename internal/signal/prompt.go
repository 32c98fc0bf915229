package signal

import (
	"strings"

	"github.com/jbony2888/entryflow/internal/classify"
)

func systemPrompt() string {
	var types []string
	for _, t := range []classify.DocType{
		classify.DocFormFilled,
		classify.DocFormBlankTemplate,
		classify.DocBodyWithHeader,
		classify.DocBodyOnly,
		classify.DocMultiEntry,
		classify.DocUnknown,
	} {
		types = append(types, string(t))
	}

	var fields []string
	for _, key := range classify.FieldLabels {
		fields = append(fields, string(key))
	}

	parts := []string{
		"You read contest entry forms that mix English and Spanish.",
		"Return ONLY JSON matching the provided schema.",
		"doc_type must be one of: " + strings.Join(types, ", ") + ".",
		"fields keys must come from: " + strings.Join(fields, ", ") + ".",
		"Every field value must be copied verbatim from the input text. Never paraphrase, translate, or invent a value.",
		"Omit a field entirely when the form leaves it blank.",
		"rationale is one short sentence describing the layout you saw.",
	}
	return strings.Join(parts, " ")
}

func userPrompt(text, filename string) string {
	var b strings.Builder
	b.WriteString("Filename: ")
	b.WriteString(filename)
	b.WriteString("\n\nExtracted text:\n")
	if len(text) > promptTextLimit {
		b.WriteString(text[:promptTextLimit])
	} else {
		b.WriteString(text)
	}
	return b.String()
}
