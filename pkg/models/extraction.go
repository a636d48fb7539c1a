package models

// ExtractionResult is the structured metadata extracted from a document.
type ExtractionResult struct {
	DocumentType    string          `json:"document_type"`
	ClientInfo      ClientInfo      `json:"client_info"`
	ContractDetails ContractDetails `json:"contract_details"`
	TypeSpecific    map[string]any  `json:"type_specific,omitempty"`
	Confidence      float64         `json:"confidence"`
	LowConfidence   bool            `json:"low_confidence,omitempty"`
}

// ClientInfo carries the extracted counterparty identity and how confident
// the extractor was about it.
type ClientInfo struct {
	PrimaryName      string   `json:"primary_name"`
	AlternativeNames []string `json:"alternative_names,omitempty"`
	Confidence       float64  `json:"confidence"`
}

// ContractDetails holds the dates and renewal terms pulled from the document.
type ContractDetails struct {
	EffectiveDate  string `json:"effective_date,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	AutoRenewal    bool   `json:"auto_renewal"`
	SowType        string `json:"sow_type,omitempty"`
	ContractValue  string `json:"contract_value,omitempty"`
}

// Identity converts the extracted client info into a matcher input.
func (c ClientInfo) Identity() CandidateIdentity {
	return CandidateIdentity{
		PrimaryName:      c.PrimaryName,
		AlternativeNames: c.AlternativeNames,
	}
}
