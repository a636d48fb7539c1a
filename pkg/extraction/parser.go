package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
)

// ErrEmptyResponse is returned when the model produced no usable output.
var ErrEmptyResponse = errors.New("empty extraction response")

// ParseResult parses the model's JSON response into an ExtractionResult.
// Markdown code fences around the JSON are tolerated. Results whose
// confidence falls below threshold are flagged, not rejected.
func ParseResult(raw string, threshold float64) (*models.ExtractionResult, error) {
	clean := stripCodeFences(raw)
	if clean == "" {
		return nil, ErrEmptyResponse
	}

	var result models.ExtractionResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("invalid extraction response: %w", err)
	}

	result.ClientInfo.PrimaryName = strings.TrimSpace(result.ClientInfo.PrimaryName)
	if result.Confidence < threshold {
		result.LowConfidence = true
	}

	return &result, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
