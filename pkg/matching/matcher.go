// Package matching reconciles extracted counterparty names against the
// client registry.
package matching

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
	"github.com/AryaKesharwani/erp-next-contract/pkg/normalizers"
)

// ErrInvalidInput is returned when a candidate has no usable primary name.
var ErrInvalidInput = errors.New("candidate is missing a usable primary name")

const (
	// exactScore is the score assigned on an exact normalized name match
	exactScore = 100

	// aliasSkipScore: once the running best exceeds this, alias comparisons
	// for the remaining names of a client cannot change the outcome
	aliasSkipScore = 95

	// secondary candidates are recorded when a client's best score falls
	// strictly inside this band and the client is not the running best
	secondaryLowerBound = 60
	secondaryUpperBound = 95

	// alternative list caps per outcome branch
	maxAlternativesMatched   = 3
	maxAlternativesUnmatched = 5
)

// ValidateCandidate checks that a candidate identity can be reconciled.
// Matching itself tolerates an empty primary name; callers use this at the
// service boundary to reject unusable input up front.
func ValidateCandidate(candidate models.CandidateIdentity) error {
	if strings.TrimSpace(candidate.PrimaryName) == "" {
		return ErrInvalidInput
	}
	return nil
}

// Matcher scores candidate identities against registry snapshots. It holds
// no state between calls; the decision is a pure function of its inputs.
type Matcher struct {
	scorer *Scorer
}

// NewMatcher creates a new Matcher
func NewMatcher() *Matcher {
	return &Matcher{scorer: NewScorer()}
}

// Match reconciles a candidate against a registry snapshot. The registry is
// scanned in the order given; the first client to reach a given score wins
// ties, and an exact normalized match on the canonical name stops the scan.
func (m *Matcher) Match(candidate models.CandidateIdentity, registry []models.Client, threshold float64) models.MatchDecision {
	if len(registry) == 0 {
		return models.NewCreateNewClient(candidate.PrimaryName, 0.0, nil, nil)
	}

	normalizedPrimary := normalizers.NormalizeCompanyName(candidate.PrimaryName)
	namesToCheck := candidate.Names()

	bestScore := 0
	bestIdx := -1
	var matchReasons []string
	var alternatives []models.AlternativeMatch

	for i, client := range registry {
		normalizedClientName := normalizers.NormalizeCompanyName(client.ClientName)

		// Exact normalized match on the canonical name selects this client
		// and ends the scan. Aliases are never eligible for this path.
		if normalizedPrimary == normalizedClientName {
			bestScore = exactScore
			bestIdx = i
			matchReasons = []string{"Exact name match (normalized)"}
			break
		}

		clientBest := 0

		for _, name := range namesToCheck {
			score := m.scorer.Ratio(normalizers.NormalizeCompanyName(name), normalizedClientName)
			if score > clientBest {
				clientBest = score
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
				matchReasons = []string{fmt.Sprintf("Fuzzy match: '%s' vs '%s' (%d%%)", name, client.ClientName, score)}
			}
		}

		// Aliases cannot matter once a near-exact match exists this round.
		if bestScore <= aliasSkipScore {
			for _, alias := range client.Aliases {
				normalizedAlias := normalizers.NormalizeCompanyName(alias)
				for _, name := range namesToCheck {
					score := m.scorer.Ratio(normalizers.NormalizeCompanyName(name), normalizedAlias)
					if score > clientBest {
						clientBest = score
					}
					if score > bestScore {
						bestScore = score
						bestIdx = i
						matchReasons = []string{fmt.Sprintf("Fuzzy match: '%s' vs alias '%s' of '%s' (%d%%)", name, alias, client.ClientName, score)}
					}
				}
			}
		}

		if clientBest > secondaryLowerBound && clientBest < secondaryUpperBound && bestIdx != i {
			alternatives = append(alternatives, models.AlternativeMatch{
				ClientID:   client.ClientID,
				ClientName: client.ClientName,
				Confidence: float64(clientBest) / 100,
			})
		}
	}

	confidence := float64(bestScore) / 100

	sort.SliceStable(alternatives, func(a, b int) bool {
		return alternatives[a].Confidence > alternatives[b].Confidence
	})

	if bestIdx >= 0 && confidence >= threshold {
		return models.NewUseMatch(registry[bestIdx], confidence, matchReasons, truncate(alternatives, maxAlternativesMatched))
	}

	// The unmatched shape carries no reasons: nothing cleared the threshold.
	return models.NewCreateNewClient(candidate.PrimaryName, confidence, nil, truncate(alternatives, maxAlternativesUnmatched))
}

func truncate(alternatives []models.AlternativeMatch, limit int) []models.AlternativeMatch {
	if len(alternatives) > limit {
		return alternatives[:limit]
	}
	return alternatives
}
