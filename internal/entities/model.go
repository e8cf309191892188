package entities

// Entity types extracted from or attached to documents.
const (
	TypePerson       = "person"
	TypeLocation     = "location"
	TypeOrganization = "organization"
	TypeEvent        = "event"
	TypeDate         = "date"
	TypeUnit         = "unit"
)

var validTypes = map[string]struct{}{
	TypePerson:       {},
	TypeLocation:     {},
	TypeOrganization: {},
	TypeEvent:        {},
	TypeDate:         {},
	TypeUnit:         {},
}

// ValidType reports whether t is a known entity type.
func ValidType(t string) bool {
	_, ok := validTypes[t]
	return ok
}

// Entity is a named, typed reference linked to documents through the
// association table. DocumentCount is derived from that table.
type Entity struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Date          string `json:"date,omitempty"`
	DocumentCount int    `json:"documentCount"`
}

// Spec identifies an entity mention to resolve on commit. Resolution is
// archive-wide: a case-insensitive exact match on (name, type) reuses the
// existing row, otherwise a new Entity is created.
type Spec struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Date string `json:"date,omitempty"`
}
