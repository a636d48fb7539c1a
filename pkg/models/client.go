package models

// Client is a single entry in the client registry snapshot. Snapshots are
// read-only to the matcher; IDs are unique within a snapshot.
type Client struct {
	ClientID   string   `json:"client_id"`
	ClientName string   `json:"client_name"`
	Aliases    []string `json:"aliases,omitempty"`
}

// CandidateIdentity is the extracted identity of a counterparty: the primary
// name plus any alternative names found in the document.
type CandidateIdentity struct {
	PrimaryName      string   `json:"primary_name"`
	AlternativeNames []string `json:"alternative_names,omitempty"`
}

// Names returns the primary name followed by the alternatives, in the order
// they are scanned during matching.
func (c CandidateIdentity) Names() []string {
	names := make([]string, 0, len(c.AlternativeNames)+1)
	names = append(names, c.PrimaryName)
	names = append(names, c.AlternativeNames...)
	return names
}
