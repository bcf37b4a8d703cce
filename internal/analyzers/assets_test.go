package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/config"
	"sentinel/internal/domain"
	"sentinel/internal/flags"
)

func TestAssetsNilSummary(t *testing.T) {
	a := NewAssets(config.Default().Thresholds.Assets)
	findings, err := a.Evaluate(&domain.Applicant{FetchedAt: fetchedAt})
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestAssetsNoAssets(t *testing.T) {
	tests := []struct {
		name   string
		assets domain.AssetSummary
		reason string
	}{
		{
			"empty hangar",
			domain.AssetSummary{},
			"No declared assets",
		},
		{
			"pocket change",
			domain.AssetSummary{ItemCount: 12, TotalValueISK: 40_000_000, LocationCount: 1},
			"Very low asset value: 40M ISK",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssets(config.Default().Thresholds.Assets)
			findings, err := a.Evaluate(&domain.Applicant{Assets: &tt.assets, FetchedAt: fetchedAt})
			require.NoError(t, err)

			f := byCode(t, findings, flags.NoAssets)
			assert.Equal(t, tt.reason, f.Reason)
			assert.InDelta(t, 0.8, f.Confidence, 1e-9)
			assert.Equal(t, DistributionConsolidated, f.Evidence["distribution"])
		})
	}
}

func TestAssetsWealthy(t *testing.T) {
	a := NewAssets(config.Default().Thresholds.Assets)
	findings, err := a.Evaluate(&domain.Applicant{
		Assets: &domain.AssetSummary{
			ItemCount:     900,
			TotalValueISK: 25_000_000_000,
			LocationCount: 8,
		},
		FetchedAt: fetchedAt,
	})
	require.NoError(t, err)

	f := byCode(t, findings, flags.Established)
	assert.Equal(t, DistributionScattered, f.Evidence["distribution"])
	assert.NotContains(t, codes(findings), flags.NoAssets)
}

func TestAssetsCapitalPilot(t *testing.T) {
	tests := []struct {
		name   string
		assets domain.AssetSummary
		conf   float64
	}{
		{
			"supercapital owner",
			domain.AssetSummary{ItemCount: 10, TotalValueISK: 90e9, Supercapitals: []string{"Nyx"}, CapitalShips: []string{"Apostle"}},
			0.95,
		},
		{
			"capital owner",
			domain.AssetSummary{ItemCount: 10, TotalValueISK: 6e9, CapitalShips: []string{"Revelation", "Apostle"}},
			0.9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssets(config.Default().Thresholds.Assets)
			findings, err := a.Evaluate(&domain.Applicant{Assets: &tt.assets, FetchedAt: fetchedAt})
			require.NoError(t, err)

			f := byCode(t, findings, flags.CapitalPilot)
			assert.InDelta(t, tt.conf, f.Confidence, 1e-9)
		})
	}
}

func TestAssetsHighSecOnly(t *testing.T) {
	a := NewAssets(config.Default().Thresholds.Assets)
	findings, err := a.Evaluate(&domain.Applicant{
		Assets: &domain.AssetSummary{
			ItemCount:      50,
			TotalValueISK:  2e9,
			PrimaryRegions: []string{"The Forge", "Domain"},
		},
		FetchedAt: fetchedAt,
	})
	require.NoError(t, err)
	assert.Contains(t, codes(findings), flags.HighSecOnly)

	// One nullsec region clears the flag.
	findings, err = a.Evaluate(&domain.Applicant{
		Assets: &domain.AssetSummary{
			ItemCount:      50,
			TotalValueISK:  2e9,
			PrimaryRegions: []string{"The Forge", "Delve"},
		},
		FetchedAt: fetchedAt,
	})
	require.NoError(t, err)
	assert.NotContains(t, codes(findings), flags.HighSecOnly)
}

func TestAssetsStructures(t *testing.T) {
	a := NewAssets(config.Default().Thresholds.Assets)
	findings, err := a.Evaluate(&domain.Applicant{
		Assets:    &domain.AssetSummary{ItemCount: 400, TotalValueISK: 3e9, HasStructures: true},
		FetchedAt: fetchedAt,
	})
	require.NoError(t, err)

	f := byCode(t, findings, flags.Established)
	assert.Equal(t, true, f.Evidence["has_structures"])
}
