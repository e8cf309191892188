package documents

import (
	"time"

	"archive-backend/internal/entities"
)

// Document types recognized by the archive.
const (
	TypeLetter     = "letter"
	TypeReport     = "report"
	TypePhoto      = "photo"
	TypeNewspaper  = "newspaper"
	TypeList       = "list"
	TypeDiaryEntry = "diary_entry"
	TypeBook       = "book"
	TypeMap        = "map"
	TypeBiography  = "biography"
)

var documentTypes = map[string]struct{}{
	TypeLetter:     {},
	TypeReport:     {},
	TypePhoto:      {},
	TypeNewspaper:  {},
	TypeList:       {},
	TypeDiaryEntry: {},
	TypeBook:       {},
	TypeMap:        {},
	TypeBiography:  {},
}

// ValidDocumentType reports whether t is one of the recognized types.
func ValidDocumentType(t string) bool {
	_, ok := documentTypes[t]
	return ok
}

// Document is an archived historical document together with its resolved
// entity associations.
type Document struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	FileName     string            `json:"fileName"`
	Content      string            `json:"content"`
	ImageURL     string            `json:"imageUrl,omitempty"`
	DocumentType string            `json:"documentType"`
	FileID       string            `json:"fileId,omitempty"`
	FilePath     string            `json:"filePath,omitempty"`
	MimeType     string            `json:"mimeType,omitempty"`
	FileSize     int64             `json:"fileSize,omitempty"`
	Entities     []entities.Entity `json:"entities"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}
