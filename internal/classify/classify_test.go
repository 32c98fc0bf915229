package classify_test

import (
	"testing"

	"github.com/jbony2888/entryflow/internal/classify"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Name", "name"},
		{"diacritics stripped", "Año de graduación", "ano de graduacion"},
		{"spanish label", "NIÑO", "nino"},
		{"mixed", "Eséñá  Test", "esena  test"},
		{"unchanged ascii", "grade 5", "grade 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify.Fold(tt.in); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatchLabel(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    classify.LabelKey
		matched bool
	}{
		{"english name", "Name: Maria Lopez", classify.LabelName, true},
		{"spanish name", "Nombre: María López", classify.LabelName, true},
		{"school", "School: Lincoln Elementary", classify.LabelSchool, true},
		{"spanish school", "Escuela: Benito Juárez", classify.LabelSchool, true},
		{"grade", "Grade:", classify.LabelGrade, true},
		{"spanish grade", "Grado: 5", classify.LabelGrade, true},
		{"guardian", "Parent/Guardian Name: Ana", classify.LabelGuardian, true},
		{"phone", "Phone: 555-0100", classify.LabelPhone, true},
		{"email", "Email: a@b.com", classify.LabelEmail, true},
		{"city", "City: Austin", classify.LabelCity, true},
		{"title", "Title: My Hero", classify.LabelTitle, true},
		{"essay anchor", "Essay:", classify.LabelEssay, true},
		{"prose is not a label", "My favorite teacher is Ms. Name because", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := classify.MatchLabel(tt.line)
			if ok != tt.matched {
				t.Fatalf("MatchLabel(%q) matched = %v, want %v", tt.line, ok, tt.matched)
			}
			if ok && got != tt.want {
				t.Errorf("MatchLabel(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestInlineValue(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"colon", "Name: Maria Lopez", "Maria Lopez"},
		{"equals", "Grade = 5", "5"},
		{"fullwidth colon", "Nombre： María", "María"},
		{"blank fill", "Name: ____________", ""},
		{"no separator", "Maria Lopez", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify.InlineValue(tt.line); got != tt.want {
				t.Errorf("InlineValue(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

const filledForm = `Name: Maria Lopez
School: Lincoln Elementary
Grade: 5
Guardian Phone: 555-0100

Essay:
My favorite teacher changed my life. She stayed after class every day
to help students who were struggling with fractions and never once
made anyone feel small for asking questions.`

const blankForm = `Name: ____________
School: ____________
Grade: ____
Essay:
`

func TestExtractFeatures(t *testing.T) {
	f := classify.ExtractFeatures(filledForm)

	if f.DistinctLabels < 4 {
		t.Errorf("DistinctLabels = %d, want >= 4", f.DistinctLabels)
	}
	if f.FilledLabels < 3 {
		t.Errorf("FilledLabels = %d, want >= 3", f.FilledLabels)
	}
	if f.WordCount == 0 {
		t.Error("WordCount = 0, want > 0")
	}
	if f.BlankMarkers != 0 {
		t.Errorf("BlankMarkers = %d, want 0", f.BlankMarkers)
	}

	b := classify.ExtractFeatures(blankForm)
	if b.BlankMarkers < 3 {
		t.Errorf("blank form BlankMarkers = %d, want >= 3", b.BlankMarkers)
	}
	if b.FilledLabels != 0 {
		t.Errorf("blank form FilledLabels = %d, want 0", b.FilledLabels)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		f    classify.Features
		want classify.DocType
	}{
		{
			"empty text",
			classify.Features{},
			classify.DocUnknown,
		},
		{
			"repeated entries",
			classify.Features{WordCount: 400, DistinctLabels: 4, FilledLabels: 4, EntryRepeats: 3},
			classify.DocMultiEntry,
		},
		{
			"blank template",
			classify.Features{WordCount: 20, DistinctLabels: 4, FilledLabels: 0, BlankMarkers: 4},
			classify.DocFormBlankTemplate,
		},
		{
			"blank markers without enough recognized labels",
			classify.Features{WordCount: 15, DistinctLabels: 1, FilledLabels: 0, BlankMarkers: 5},
			classify.DocFormBlankTemplate,
		},
		{
			"filled form",
			classify.Features{WordCount: 200, DistinctLabels: 4, FilledLabels: 4},
			classify.DocFormFilled,
		},
		{
			"body with header",
			classify.Features{WordCount: 300, DistinctLabels: 1, FilledLabels: 1},
			classify.DocBodyWithHeader,
		},
		{
			"body only",
			classify.Features{WordCount: 300},
			classify.DocBodyOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify.Classify(tt.f); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	f := classify.ExtractFeatures(filledForm)
	first := classify.Classify(f)
	for i := 0; i < 10; i++ {
		if got := classify.Classify(classify.ExtractFeatures(filledForm)); got != first {
			t.Fatalf("classification changed between runs: %v then %v", first, got)
		}
	}
}

func TestParseDocType(t *testing.T) {
	tests := []struct {
		in   string
		want classify.DocType
	}{
		{"FORM_FILLED", classify.DocFormFilled},
		{"form_filled", classify.DocFormFilled},
		{"MULTI_ENTRY", classify.DocMultiEntry},
		{"garbage", classify.DocUnknown},
		{"", classify.DocUnknown},
	}

	for _, tt := range tests {
		if got := classify.ParseDocType(tt.in); got != tt.want {
			t.Errorf("ParseDocType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
