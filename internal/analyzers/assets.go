package analyzers

import (
	"fmt"
	"strings"

	"sentinel/internal/config"
	"sentinel/internal/domain"
	"sentinel/internal/flags"
)

// Assets evaluates the declared-asset summary: missing or negligible
// holdings, capital ownership, wealth, high-sec-only presence, and the
// spatial distribution of holdings.
type Assets struct {
	thresholds config.AssetThresholds
}

func NewAssets(t config.AssetThresholds) *Assets {
	return &Assets{thresholds: t}
}

func (a *Assets) Name() string  { return "assets" }
func (a *Assets) Priority() int { return 30 }

// Asset distribution labels by distinct-location count.
const (
	DistributionConsolidated = "consolidated"
	DistributionDistributed  = "distributed"
	DistributionScattered    = "scattered"
)

// highsecRegions are the empire regions; an applicant whose entire presence
// sits here has never committed to dangerous space.
var highsecRegions = map[string]struct{}{
	"The Forge": {}, "Domain": {}, "Sinq Laison": {}, "Metropolis": {},
	"Heimatar": {}, "The Citadel": {}, "Essence": {}, "Lonetrek": {},
	"Placid": {}, "Everyshore": {}, "Verge Vendor": {}, "Tash-Murkon": {},
	"Khanid": {}, "Kador": {}, "Kor-Azor": {}, "Genesis": {}, "Devoid": {},
	"Derelik": {}, "Molden Heath": {}, "Solitude": {}, "Aridia": {},
}

func (a *Assets) Evaluate(profile *domain.Applicant) ([]domain.Finding, error) {
	assets := profile.Assets
	if assets == nil {
		return nil, nil
	}

	var out []domain.Finding

	if assets.ItemCount == 0 || assets.TotalValueISK < a.thresholds.MinValueISK {
		reason := "No declared assets"
		if assets.ItemCount > 0 {
			reason = fmt.Sprintf("Very low asset value: %.0fM ISK", assets.TotalValueISK/1e6)
		}
		out = append(out, finding(flags.NoAssets, reason, 0.8, map[string]any{
			"item_count":      assets.ItemCount,
			"total_value_isk": assets.TotalValueISK,
			"threshold_isk":   a.thresholds.MinValueISK,
			"distribution":    a.distribution(assets),
		}))
	} else if assets.TotalValueISK >= a.thresholds.WealthyISK {
		out = append(out, finding(flags.Established,
			fmt.Sprintf("Substantial assets: %.1fB ISK", assets.TotalValueISK/1e9),
			0.85, map[string]any{
				"total_value_isk": assets.TotalValueISK,
				"distribution":    a.distribution(assets),
			}))
	}

	switch {
	case len(assets.Supercapitals) > 0:
		out = append(out, finding(flags.CapitalPilot,
			"Owns supercapitals: "+strings.Join(assets.Supercapitals, ", "),
			0.95, map[string]any{
				"supercapitals": assets.Supercapitals,
				"capitals":      assets.CapitalShips,
			}))
	case len(assets.CapitalShips) > 0:
		out = append(out, finding(flags.CapitalPilot,
			"Owns capital ships: "+strings.Join(assets.CapitalShips, ", "),
			0.9, map[string]any{"capitals": assets.CapitalShips}))
	}

	if len(assets.PrimaryRegions) > 0 && allHighsec(assets.PrimaryRegions) {
		out = append(out, finding(flags.HighSecOnly,
			"Assets only in highsec regions: "+strings.Join(assets.PrimaryRegions, ", "),
			0.7, map[string]any{"regions": assets.PrimaryRegions}))
	}

	if assets.HasStructures {
		out = append(out, finding(flags.Established,
			"Owns player structures",
			0.85, map[string]any{"has_structures": true}))
	}

	return out, nil
}

func (a *Assets) distribution(assets *domain.AssetSummary) string {
	switch {
	case assets.LocationCount <= 1:
		return DistributionConsolidated
	case assets.LocationCount < a.thresholds.ScatteredLocations:
		return DistributionDistributed
	default:
		return DistributionScattered
	}
}

func allHighsec(regions []string) bool {
	for _, r := range regions {
		if _, ok := highsecRegions[r]; !ok {
			return false
		}
	}
	return true
}
