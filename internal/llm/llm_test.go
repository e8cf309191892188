package llm

import (
	"encoding/json"
	"testing"
)

func TestParseExtraction(t *testing.T) {
	raw := json.RawMessage(`{
		"title": "  Letter from the front ",
		"content": "Dear Margaret, the regiment moves at dawn.",
		"documentType": "Letter",
		"entities": [
			{"name": "Margaret Hale", "type": "Person"},
			{"name": "", "type": "person"},
			{"name": "The King", "type": "royalty"},
			{"name": "Third Regiment", "type": "unit"}
		]
	}`)

	out, err := ParseExtraction(raw)
	if err != nil {
		t.Fatalf("ParseExtraction: %v", err)
	}
	if out.Title != "Letter from the front" {
		t.Fatalf("title not trimmed: %q", out.Title)
	}
	if out.DocumentType != "letter" {
		t.Fatalf("document type not lowercased: %q", out.DocumentType)
	}
	if len(out.Entities) != 2 {
		t.Fatalf("expected 2 kept mentions, got %d: %+v", len(out.Entities), out.Entities)
	}
	if out.Entities[0].Type != "person" || out.Entities[1].Name != "Third Regiment" {
		t.Fatalf("unexpected mentions: %+v", out.Entities)
	}
}

func TestParseExtractionRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `analysis complete`},
		{"missing title", `{"content":"c","documentType":"letter"}`},
		{"missing content", `{"title":"t","documentType":"letter"}`},
		{"unknown document type", `{"title":"t","content":"c","documentType":"scroll"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseExtraction(json.RawMessage(tc.raw)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
