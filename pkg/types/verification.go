package types

import "strings"

type Verdict string

const (
	VerdictEligible    Verdict = "ELIGIBLE"
	VerdictNotEligible Verdict = "NOT_ELIGIBLE"
)

// ParseVerdict accepts the documented spellings plus the space-separated
// "NOT ELIGIBLE" some backend builds emit.
func ParseVerdict(raw string) (Verdict, bool) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(raw), "_"))
	switch Verdict(normalized) {
	case VerdictEligible:
		return VerdictEligible, true
	case VerdictNotEligible:
		return VerdictNotEligible, true
	}
	return "", false
}

type SchemeDetails struct {
	Benefits         string `json:"benefits"`
	Documents        string `json:"documents"`
	ApplicationSteps string `json:"application"`
}

// VerificationResult is immutable once built. Details is non-nil only for
// eligible verdicts.
type VerificationResult struct {
	Verdict Verdict
	Reasons []string
	Details *SchemeDetails
}

func (r *VerificationResult) Eligible() bool {
	return r != nil && r.Verdict == VerdictEligible
}
