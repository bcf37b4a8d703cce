package analyzer

import (
	"fmt"

	"sentinel/internal/domain"
	"sentinel/internal/flags"
)

// flagAdvice is the decision table mapping fired flags to recruiter
// actions. Order here controls output order.
var flagAdvice = []struct {
	code   string
	advice string
}{
	{flags.KnownSpyCorp, "Verify reason for leaving hostile organization - request explanation"},
	{flags.AwoxHistory, "Review AWOX kills in detail - may be structure bashing or valid kills"},
	{flags.RapidCorpHop, "Investigate rapid corp changes - may indicate instability or spy behavior"},
	{flags.RMTPattern, "Potential RMT detected - regular same-amount transfers suggest bought ISK"},
	{flags.LargePreJoinTransfer, "Large ISK transfer before joining - investigate source and purpose"},
	{flags.HiddenAlts, "Request full API access for deeper analysis"},
	{flags.LowActivity, "Verify pilot is active and will contribute - check recent login history"},
	{flags.ShortTenure, "New to current corp - consider probationary period"},
}

func recommendations(tier domain.Severity, findings []domain.Finding, suspected []domain.SuspectedAlt) []string {
	fired := map[string]bool{}
	for _, f := range findings {
		fired[f.Code] = true
	}

	var out []string
	switch tier {
	case domain.SeverityRed:
		out = append(out, "HIGH RISK - Recommend rejection or extensive vetting")
	case domain.SeverityYellow:
		out = append(out, "MODERATE RISK - Additional review recommended")
	case domain.SeverityGreen:
		out = append(out, "Low risk indicators - standard onboarding appropriate")
	}

	for _, entry := range flagAdvice {
		if fired[entry.code] {
			out = append(out, entry.advice)
		}
	}

	if len(suspected) > 0 && !fired[flags.HiddenAlts] {
		out = append(out, fmt.Sprintf(
			"Potential undeclared alts detected (%d) - request disclosure", len(suspected)))
	}

	return out
}
