package types

import "math"

const SearchStatusSuccess = "success"

// SchemeSummary is one ranked search hit.
type SchemeSummary struct {
	Name     string  `json:"scheme_name"`
	Category string  `json:"category"`
	Details  string  `json:"details"`
	Score    float64 `json:"score"`

	Benefits         string `json:"benefits,omitempty"`
	EligibilityText  string `json:"eligibility_text,omitempty"`
	ApplicationSteps string `json:"application_steps,omitempty"`
}

// MatchPercent is the score rendered as a whole percentage.
func (s SchemeSummary) MatchPercent() int {
	return int(math.Round(ClampScore(s.Score) * 100))
}

func ClampScore(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}

type SearchOutcome struct {
	Status  string
	Results []SchemeSummary
}

// Matched reports whether the backend answered with a usable result set.
// Any status other than "success" means no results, whatever else it says.
func (o SearchOutcome) Matched() bool {
	return o.Status == SearchStatusSuccess
}
