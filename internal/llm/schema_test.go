package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func outlineJSON(t *testing.T, chapters int) []byte {
	t.Helper()
	out := StoryOutline{Title: "El Faro"}
	for i := 1; i <= chapters; i++ {
		out.Chapters = append(out.Chapters, ChapterOutline{
			Title:   fmt.Sprintf("Capítulo %d", i),
			Summary: fmt.Sprintf("Things happen in chapter %d.", i),
		})
	}
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal outline: %v", err)
	}
	return b
}

// TestOutlineSchemaAcceptsValid validates a well-formed ten-chapter
// outline.
func TestOutlineSchemaAcceptsValid(t *testing.T) {
	schema := BuildOutlineJSONSchema(10)
	if err := ValidateJSONAgainstSchema(schema, outlineJSON(t, 10)); err != nil {
		t.Errorf("valid outline rejected: %v", err)
	}
}

// TestOutlineSchemaRejectsWrongChapterCount pins the exact-count
// constraint.
func TestOutlineSchemaRejectsWrongChapterCount(t *testing.T) {
	schema := BuildOutlineJSONSchema(10)
	if err := ValidateJSONAgainstSchema(schema, outlineJSON(t, 3)); err == nil {
		t.Error("outline with 3 chapters passed a 10-chapter schema")
	}
	if err := ValidateJSONAgainstSchema(schema, outlineJSON(t, 11)); err == nil {
		t.Error("outline with 11 chapters passed a 10-chapter schema")
	}
}

// TestOutlineSchemaRejectsMissingFields covers the required properties
// and the no-extras rule.
func TestOutlineSchemaRejectsMissingFields(t *testing.T) {
	schema := BuildOutlineJSONSchema(1)
	cases := map[string]string{
		"missing title":    `{"chapters": [{"title": "t", "summary": "s"}]}`,
		"empty title":      `{"title": "", "chapters": [{"title": "t", "summary": "s"}]}`,
		"missing summary":  `{"title": "x", "chapters": [{"title": "t"}]}`,
		"extra property":   `{"title": "x", "chapters": [{"title": "t", "summary": "s"}], "mood": "dark"}`,
		"chapters not arr": `{"title": "x", "chapters": "none"}`,
	}
	for name, doc := range cases {
		if err := ValidateJSONAgainstSchema(schema, []byte(doc)); err == nil {
			t.Errorf("%s: document passed validation", name)
		}
	}
}

// TestChapterSchema covers the single-field chapter constraint.
func TestChapterSchema(t *testing.T) {
	schema := BuildChapterJSONSchema()
	if err := ValidateJSONAgainstSchema(schema, []byte(`{"content": "Es war einmal ein Leuchtturm."}`)); err != nil {
		t.Errorf("valid chapter rejected: %v", err)
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(`{"content": ""}`)); err == nil {
		t.Error("empty chapter content passed validation")
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(`{}`)); err == nil {
		t.Error("chapter without content passed validation")
	}
}

// TestLevelRubricCoversAllLevels keeps the rubric total: every CEFR
// level gets its own guidance.
func TestLevelRubricCoversAllLevels(t *testing.T) {
	seen := map[string]bool{}
	for _, level := range []string{"A1", "A2", "B1", "B2", "C1", "C2"} {
		r := levelRubric(level)
		if r == "" {
			t.Errorf("no rubric for %s", level)
		}
		if seen[r] {
			t.Errorf("rubric for %s duplicates another level", level)
		}
		seen[r] = true
	}
	if levelRubric("??") == "" {
		t.Error("unknown level should still produce guidance")
	}
	if !strings.Contains(levelRubric("a1"), "Present tense") {
		t.Error("rubric lookup is case-sensitive")
	}
}
