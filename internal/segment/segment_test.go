package segment_test

import (
	"strings"
	"testing"

	"github.com/jbony2888/entryflow/internal/segment"
)

func TestSplitEmpty(t *testing.T) {
	metadata, body := segment.Split("")
	if metadata != "" || body != "" {
		t.Errorf("Split(\"\") = (%q, %q), want empty strings", metadata, body)
	}

	metadata, body = segment.Split("   \n\n  ")
	if metadata != "" || body != "" {
		t.Errorf("Split(whitespace) = (%q, %q), want empty strings", metadata, body)
	}
}

func TestSplitEssayAnchor(t *testing.T) {
	text := `Name: Maria Lopez
School: Lincoln Elementary
Grade: 5

Essay:
My favorite teacher changed my life.
She stayed after class every day.`

	metadata, body := segment.Split(text)

	if !strings.Contains(metadata, "Name: Maria Lopez") {
		t.Errorf("metadata missing name line: %q", metadata)
	}
	if !strings.Contains(metadata, "Essay:") {
		t.Errorf("metadata should retain the anchor line: %q", metadata)
	}
	if !strings.HasPrefix(body, "My favorite teacher") {
		t.Errorf("body should start after the anchor: %q", body)
	}
	if strings.Contains(body, "Grade:") {
		t.Errorf("body should not contain metadata labels: %q", body)
	}
}

func TestSplitSpanishAnchor(t *testing.T) {
	text := `Nombre: María López
Escuela: Benito Juárez
Grado: 5

Ensayo:
Mi maestra favorita cambió mi vida.`

	metadata, body := segment.Split(text)

	if !strings.Contains(metadata, "Nombre") {
		t.Errorf("metadata missing nombre: %q", metadata)
	}
	if !strings.HasPrefix(body, "Mi maestra favorita") {
		t.Errorf("body should start after ensayo anchor: %q", body)
	}
}

func TestSplitLabelBoundaryWithValueLine(t *testing.T) {
	// the grade value sits on its own line after the label
	text := `Name: Maria Lopez
Grade:
5

The essay begins here without any anchor label.
It continues for a while.`

	metadata, body := segment.Split(text)

	if !strings.Contains(metadata, "5") {
		t.Errorf("value line should stay in metadata: %q", metadata)
	}
	if !strings.HasPrefix(body, "The essay begins") {
		t.Errorf("body = %q, want essay start", body)
	}
}

func TestSplitInlineValueBoundary(t *testing.T) {
	text := `Name: Maria Lopez
Grade: 5

My favorite teacher is Ms. Rivera.
She made math feel like a game.`

	metadata, body := segment.Split(text)

	if strings.Contains(metadata, "favorite teacher") {
		t.Errorf("essay lines leaked into metadata: %q", metadata)
	}
	if !strings.HasPrefix(body, "My favorite teacher") {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFallbackBoundary(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, "plain prose line with no labels at all")
	}
	text := strings.Join(lines, "\n")

	metadata, body := segment.Split(text)

	if metadata == "" {
		t.Error("fallback split should yield a metadata block")
	}
	if body == "" {
		t.Error("fallback split should yield a body block")
	}
	if got := len(strings.Split(metadata, "\n")); got != 25 {
		t.Errorf("fallback metadata lines = %d, want 25", got)
	}
}

func TestSplitShortBodyOnly(t *testing.T) {
	text := "just one short line"

	metadata, body := segment.Split(text)
	if body != "" {
		t.Errorf("single line lands in metadata under the fallback, body = %q", body)
	}
	if metadata != text {
		t.Errorf("metadata = %q, want %q", metadata, text)
	}
}
