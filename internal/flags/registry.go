// Package flags holds the static catalog of risk flags. The catalog is
// built at init and never mutated afterward; extractors reference flags by
// code and the aggregator resolves severity and category here.
package flags

import (
	"errors"
	"fmt"

	"sentinel/internal/domain"
)

// ErrUnknownFlag is returned by Lookup for codes missing from the catalog.
// Hitting it at runtime means an extractor emitted a code it never
// registered, which is a programming error; the offending finding is
// dropped while the rest of the pipeline continues.
var ErrUnknownFlag = errors.New("unknown flag code")

// Red flag codes.
const (
	KnownSpyCorp = "KNOWN_SPY_CORP"
	AwoxHistory  = "AWOX_HISTORY"
	RapidCorpHop = "RAPID_CORP_HOP"
	RMTPattern   = "RMT_PATTERN"
	HiddenAlts   = "HIDDEN_ALTS"
)

// Yellow flag codes.
const (
	LowActivity          = "LOW_ACTIVITY"
	ShortTenure          = "SHORT_TENURE"
	NoAssets             = "NO_ASSETS"
	TimezoneMismatch     = "TIMEZONE_MISMATCH"
	InactivePeriod       = "INACTIVE_PERIOD"
	NPCCorpPattern       = "NPC_CORP_PATTERN"
	LargePreJoinTransfer = "LARGE_PRE_JOIN_TRANSFER"
	UndeclaredAlts       = "UNDECLARED_ALTS"
	HighSecOnly          = "HIGH_SEC_ONLY"
)

// Green flag codes.
const (
	ActivePvper     = "ACTIVE_PVPER"
	Established     = "ESTABLISHED"
	CleanHistory    = "CLEAN_HISTORY"
	CapitalPilot    = "CAPITAL_PILOT"
	TransparentAlts = "TRANSPARENT_ALTS"
)

// Definition is one catalog entry.
type Definition struct {
	Code        string
	Severity    domain.Severity
	Category    domain.Category
	Description string
}

var catalog = map[string]Definition{}

func register(code string, sev domain.Severity, cat domain.Category, desc string) {
	if _, dup := catalog[code]; dup {
		panic(fmt.Sprintf("flags: duplicate code %q", code))
	}
	catalog[code] = Definition{Code: code, Severity: sev, Category: cat, Description: desc}
}

func init() {
	register(KnownSpyCorp, domain.SeverityRed, domain.CategoryCorpHistory, "Member of a known hostile corporation")
	register(AwoxHistory, domain.SeverityRed, domain.CategoryActivity, "Has kills on corp or alliance members")
	register(RapidCorpHop, domain.SeverityRed, domain.CategoryCorpHistory, "Unusually many corporations in a short window")
	register(RMTPattern, domain.SeverityRed, domain.CategoryWallet, "Wallet pattern consistent with RMT")
	register(HiddenAlts, domain.SeverityRed, domain.CategoryAlts, "Undeclared correlated character detected")

	register(LowActivity, domain.SeverityYellow, domain.CategoryActivity, "Low recent PvP activity")
	register(ShortTenure, domain.SeverityYellow, domain.CategoryCorpHistory, "Very short tenure in current corporation")
	register(NoAssets, domain.SeverityYellow, domain.CategoryAssets, "No or negligible declared assets")
	register(TimezoneMismatch, domain.SeverityYellow, domain.CategoryActivity, "Peak activity outside the reference timezone")
	register(InactivePeriod, domain.SeverityYellow, domain.CategoryActivity, "Extended period without activity")
	register(NPCCorpPattern, domain.SeverityYellow, domain.CategoryCorpHistory, "Multiple extended NPC corp stints")
	register(LargePreJoinTransfer, domain.SeverityYellow, domain.CategoryWallet, "Large ISK received shortly before joining")
	register(UndeclaredAlts, domain.SeverityYellow, domain.CategoryAlts, "Suspected alts with none declared")
	register(HighSecOnly, domain.SeverityYellow, domain.CategoryAssets, "Presence limited to high-sec regions")

	register(ActivePvper, domain.SeverityGreen, domain.CategoryActivity, "Active PvP participant")
	register(Established, domain.SeverityGreen, domain.CategoryCorpHistory, "Established character with stable history")
	register(CleanHistory, domain.SeverityGreen, domain.CategoryCorpHistory, "No hostile affiliations, stable history")
	register(CapitalPilot, domain.SeverityGreen, domain.CategoryAssets, "Owns capital or supercapital hulls")
	register(TransparentAlts, domain.SeverityGreen, domain.CategoryAlts, "Transparent about alt characters")
}

// Lookup resolves a flag code to its definition.
func Lookup(code string) (Definition, error) {
	def, ok := catalog[code]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownFlag, code)
	}
	return def, nil
}

// Codes returns every registered code. Intended for diagnostics and tests.
func Codes() []string {
	out := make([]string, 0, len(catalog))
	for code := range catalog {
		out = append(out, code)
	}
	return out
}
