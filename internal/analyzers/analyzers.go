// Package analyzers contains the signal extractors. Each extractor is a
// pure rule family over one Applicant snapshot: it never performs I/O and
// never fails on missing data; absent data yields no findings. Extractors
// emit findings by flag code only; severity and category are resolved by
// the aggregation engine against the flag registry.
package analyzers

import (
	"sentinel/internal/config"
	"sentinel/internal/domain"
)

// Extractor is the uniform capability every rule family exposes.
type Extractor interface {
	// Name identifies the extractor in reports and logs.
	Name() string
	// Priority orders findings of equal severity in the final report.
	// Lower runs earlier in the ordering.
	Priority() int
	// Evaluate derives findings from the snapshot. An error marks the
	// extractor's signal as missing; it never aborts the analysis.
	Evaluate(profile *domain.Applicant) ([]domain.Finding, error)
}

// All returns the full extractor set wired with the given configuration.
func All(cfg config.Config) []Extractor {
	return []Extractor{
		NewCorpHistory(cfg.Thresholds.CorpHistory, cfg.HostileCorps, cfg.HostileAlliances),
		NewActivity(cfg.Thresholds.Activity, cfg.ReferenceTimezone),
		NewAssets(cfg.Thresholds.Assets),
		NewWallet(cfg.Thresholds.Wallet),
		NewSocial(cfg.Thresholds.Social),
	}
}

func finding(code, reason string, confidence float64, evidence map[string]any) domain.Finding {
	return domain.Finding{
		Code:       code,
		Reason:     reason,
		Evidence:   evidence,
		Confidence: confidence,
	}
}
