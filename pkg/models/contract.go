package models

import "time"

// ContractRecord is the payload for creating a contract in the system of
// record after a document has been reconciled.
type ContractRecord struct {
	ContractID   string `json:"contract_id,omitempty"`
	ClientID     string `json:"client_id"`
	DocumentName string `json:"document_name"`
	SowType      string `json:"sow_type"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	AutoRenewal  bool   `json:"auto_renewal"`
}

// ExpiringContract is an active contract approaching its expiration date.
type ExpiringContract struct {
	ContractID          string    `json:"contract_id"`
	ClientID            string    `json:"client_id"`
	ClientName          string    `json:"client_name"`
	DocumentName        string    `json:"document_name,omitempty"`
	EndDate             time.Time `json:"end_date"`
	DaysUntilExpiration int       `json:"days_until_expiration"`
}
