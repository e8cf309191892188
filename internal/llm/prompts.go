package llm

import "fmt"

// ExtractionSystemPrompt instructs the model to return strict JSON matching
// the Extraction shape.
const ExtractionSystemPrompt = `You are an archivist analyzing scanned historical documents.
Given the text of one document, respond with a single JSON object and nothing else:
{
  "title": "short descriptive title",
  "content": "full transcribed or cleaned text of the document",
  "documentType": "one of: letter, report, photo, newspaper, list, diary_entry, book, map, biography",
  "date": "document date if present, free text, else empty",
  "summary": "one or two sentence summary",
  "entities": [
    {"name": "...", "type": "one of: person, location, organization, event, date, unit", "date": "optional"}
  ]
}
Transcribe names exactly as written. Do not invent entities that are not in the text.`

// BuildUserPrompt renders the per-file user message.
func BuildUserPrompt(input ExtractInput) string {
	return fmt.Sprintf("File: %s\nMIME type: %s\n\nDocument text:\n%s",
		input.FileName, input.MimeType, input.Text)
}
