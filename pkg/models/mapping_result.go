package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// MappingResult is the persisted record of a single match decision.
type MappingResult struct {
	ID                string         `json:"id" db:"id"`
	DocumentID        *string        `json:"document_id,omitempty" db:"document_id"`
	CandidateName     string         `json:"candidate_name" db:"candidate_name"`
	MatchedClientID   *string        `json:"matched_client_id,omitempty" db:"matched_client_id"`
	MatchedClientName *string        `json:"matched_client_name,omitempty" db:"matched_client_name"`
	Recommendation    string         `json:"recommendation" db:"recommendation"`
	Confidence        float64        `json:"confidence" db:"confidence"`
	MatchReasons      types.JSONText `json:"match_reasons" db:"match_reasons"`
	Alternatives      types.JSONText `json:"alternatives" db:"alternatives"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}
