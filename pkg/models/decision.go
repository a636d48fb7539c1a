package models

// Recommendation tags the two shapes a match decision can take.
type Recommendation string

const (
	RecommendationUseMatch        Recommendation = "USE_MATCH"
	RecommendationCreateNewClient Recommendation = "CREATE_NEW_CLIENT"
)

// AlternativeMatch is a runner-up candidate surfaced alongside a decision.
type AlternativeMatch struct {
	ClientID   string  `json:"client_id"`
	ClientName string  `json:"client_name"`
	Confidence float64 `json:"confidence"`
}

// MatchDecision is the outcome of reconciling a candidate identity against
// the client registry. The Recommendation tag determines which fields are
// populated: USE_MATCH carries the matched client, CREATE_NEW_CLIENT carries
// the suggested name for the new client record.
type MatchDecision struct {
	Recommendation      Recommendation     `json:"recommendation"`
	ClientID            string             `json:"client_id,omitempty"`
	ClientName          string             `json:"client_name,omitempty"`
	SuggestedClientName string             `json:"suggested_client_name,omitempty"`
	Confidence          float64            `json:"confidence"`
	MatchReasons        []string           `json:"match_reasons,omitempty"`
	Alternatives        []AlternativeMatch `json:"alternatives,omitempty"`
}

// IsMatch reports whether an existing client should be used.
func (d MatchDecision) IsMatch() bool {
	return d.Recommendation == RecommendationUseMatch
}

// NewUseMatch builds the matched shape of the decision.
func NewUseMatch(client Client, confidence float64, reasons []string, alternatives []AlternativeMatch) MatchDecision {
	return MatchDecision{
		Recommendation: RecommendationUseMatch,
		ClientID:       client.ClientID,
		ClientName:     client.ClientName,
		Confidence:     confidence,
		MatchReasons:   reasons,
		Alternatives:   alternatives,
	}
}

// NewCreateNewClient builds the unmatched shape of the decision.
func NewCreateNewClient(suggestedName string, confidence float64, reasons []string, alternatives []AlternativeMatch) MatchDecision {
	return MatchDecision{
		Recommendation:      RecommendationCreateNewClient,
		SuggestedClientName: suggestedName,
		Confidence:          confidence,
		MatchReasons:        reasons,
		Alternatives:        alternatives,
	}
}
