package models

import (
	"github.com/google/uuid"
)

// LegalCase is a precedent row in the local knowledge base.
type LegalCase struct {
	ID       uuid.UUID `json:"id"`
	CaseName string    `json:"case_name"`
	Citation string    `json:"citation"`
	Summary  string    `json:"summary"`
	Category string    `json:"category"`
	URL      *string   `json:"url,omitempty"`
}

// LegalProcedure is a procedural-guidance row (court forms, deadlines, fees).
type LegalProcedure struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	Category string    `json:"category"`
	Source   *string   `json:"source,omitempty"`
	Track    *string   `json:"track,omitempty"`
}
