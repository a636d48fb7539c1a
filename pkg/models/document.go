package models

import "time"

// Document processing statuses
const (
	DocumentStatusPending   = "pending"
	DocumentStatusProcessed = "processed"
	DocumentStatusFailed    = "failed"
)

// Document is an ingested legal document awaiting reconciliation.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Text       string    `json:"text"`
	Source     string    `json:"source,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// ProcessedDocument is the ingest ledger row for a document.
type ProcessedDocument struct {
	ID           string     `json:"id" db:"id"`
	DocumentID   string     `json:"document_id" db:"document_id"`
	DocumentName string     `json:"document_name" db:"document_name"`
	Status       string     `json:"status" db:"status"`
	Error        *string    `json:"error,omitempty" db:"error"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty" db:"processed_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
