package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Client abstracts LLM providers for historical document extraction.
type Client interface {
	ExtractDocument(ctx context.Context, input ExtractInput) (Extraction, error)
}

// ExtractInput carries the text and file metadata handed to the model.
type ExtractInput struct {
	FileName string
	MimeType string
	Text     string
}

// EntityMention is one entity reference the model found in the document.
type EntityMention struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Date string `json:"date,omitempty"`
}

// Extraction is the structured analysis of one source file.
type Extraction struct {
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	DocumentType string          `json:"documentType"`
	Date         string          `json:"date,omitempty"`
	Summary      string          `json:"summary,omitempty"`
	Entities     []EntityMention `json:"entities"`
}

var documentTypes = map[string]struct{}{
	"letter": {}, "report": {}, "photo": {}, "newspaper": {}, "list": {},
	"diary_entry": {}, "book": {}, "map": {}, "biography": {},
}

var entityTypes = map[string]struct{}{
	"person": {}, "location": {}, "organization": {}, "event": {}, "date": {}, "unit": {},
}

// ParseExtraction decodes and normalizes a model response. Types come back
// lowercased; entity mentions with an unknown type or empty name are dropped
// rather than failing the whole extraction.
func ParseExtraction(raw json.RawMessage) (Extraction, error) {
	var out Extraction
	if err := json.Unmarshal(raw, &out); err != nil {
		return Extraction{}, fmt.Errorf("extraction parse: %w", err)
	}
	out.Title = strings.TrimSpace(out.Title)
	out.Content = strings.TrimSpace(out.Content)
	out.DocumentType = strings.ToLower(strings.TrimSpace(out.DocumentType))
	if out.Title == "" || out.Content == "" {
		return Extraction{}, errors.New("extraction missing title or content")
	}
	if _, ok := documentTypes[out.DocumentType]; !ok {
		return Extraction{}, fmt.Errorf("extraction has unknown document type %q", out.DocumentType)
	}

	kept := out.Entities[:0]
	for _, mention := range out.Entities {
		mention.Name = strings.TrimSpace(mention.Name)
		mention.Type = strings.ToLower(strings.TrimSpace(mention.Type))
		if mention.Name == "" {
			continue
		}
		if _, ok := entityTypes[mention.Type]; !ok {
			continue
		}
		kept = append(kept, mention)
	}
	out.Entities = kept
	return out, nil
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation used when no provider is
// configured.
type PlaceholderClient struct{}

// ExtractDocument returns ErrNotImplemented.
func (PlaceholderClient) ExtractDocument(ctx context.Context, input ExtractInput) (Extraction, error) {
	_ = ctx
	_ = input
	return Extraction{}, ErrNotImplemented
}
