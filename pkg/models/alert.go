package models

import "time"

// Alert types
const (
	AlertTypeExpiration      = "contract_expiration"
	AlertTypeProcessingError = "processing_error"
)

// Alert priorities
const (
	AlertPriorityHigh   = "high"
	AlertPriorityMedium = "medium"
	AlertPriorityLow    = "low"
)

// Alert is a notification raised for an expiring contract or a processing
// failure.
type Alert struct {
	ID         string    `json:"id,omitempty"`
	Type       string    `json:"type"`
	Priority   string    `json:"priority"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	ContractID string    `json:"contract_id,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// AlertLogEntry is the local persistence row for a raised alert.
type AlertLogEntry struct {
	ID         string    `json:"id" db:"id"`
	Type       string    `json:"type" db:"type"`
	Priority   string    `json:"priority" db:"priority"`
	Subject    string    `json:"subject" db:"subject"`
	Message    string    `json:"message" db:"message"`
	ContractID *string   `json:"contract_id,omitempty" db:"contract_id"`
	DocumentID *string   `json:"document_id,omitempty" db:"document_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
