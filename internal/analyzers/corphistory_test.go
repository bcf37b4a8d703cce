package analyzers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/config"
	"sentinel/internal/domain"
	"sentinel/internal/flags"
)

var fetchedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func codes(findings []domain.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Code)
	}
	return out
}

func byCode(t *testing.T, findings []domain.Finding, code string) domain.Finding {
	t.Helper()
	for _, f := range findings {
		if f.Code == code {
			return f
		}
	}
	t.Fatalf("no finding with code %s in %v", code, codes(findings))
	return domain.Finding{}
}

// hopHistory builds n memberships, newest first, each started within the
// rapid-hop window.
func hopHistory(n int) []domain.CorpRecord {
	history := make([]domain.CorpRecord, 0, n)
	for i := 0; i < n; i++ {
		start := fetchedAt.AddDate(0, 0, -20*(i+1))
		rec := domain.CorpRecord{
			CorporationID:   int64(1000 + i),
			CorporationName: "Corp",
			Start:           start,
		}
		if i > 0 {
			end := fetchedAt.AddDate(0, 0, -20*i)
			rec.End = &end
		}
		history = append(history, rec)
	}
	return history
}

func TestCorpHistoryRapidHop(t *testing.T) {
	tests := []struct {
		name  string
		corps int
		fires bool
	}{
		{"five corps in window", 5, true},
		{"four corps in window", 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCorpHistory(config.Default().Thresholds.CorpHistory, nil, nil)
			profile := &domain.Applicant{
				CorpHistory: hopHistory(tt.corps),
				FetchedAt:   fetchedAt,
			}
			findings, err := c.Evaluate(profile)
			require.NoError(t, err)
			if tt.fires {
				f := byCode(t, findings, flags.RapidCorpHop)
				assert.InDelta(t, 0.85, f.Confidence, 1e-9)
				assert.Equal(t, tt.corps, f.Evidence["corp_count"])
			} else {
				assert.NotContains(t, codes(findings), flags.RapidCorpHop)
			}
		})
	}
}

func TestCorpHistoryHostileCorp(t *testing.T) {
	c := NewCorpHistory(config.Default().Thresholds.CorpHistory, []int64{666}, nil)
	end := fetchedAt.AddDate(-1, 0, 0)
	profile := &domain.Applicant{
		CorpHistory: []domain.CorpRecord{
			{CorporationID: 42, CorporationName: "Home Corp", Start: fetchedAt.AddDate(-1, 0, 0)},
			{CorporationID: 666, CorporationName: "Spy Nest", Start: fetchedAt.AddDate(-2, 0, 0), End: &end},
		},
		FetchedAt: fetchedAt,
	}
	findings, err := c.Evaluate(profile)
	require.NoError(t, err)

	f := byCode(t, findings, flags.KnownSpyCorp)
	assert.InDelta(t, 0.95, f.Confidence, 1e-9)
	assert.Equal(t, int64(666), f.Evidence["corp_id"])
	assert.NotContains(t, codes(findings), flags.CleanHistory)
}

func TestCorpHistoryHostileFlagFromSource(t *testing.T) {
	// The record itself is marked hostile even though the ID is not on the
	// configured list.
	c := NewCorpHistory(config.Default().Thresholds.CorpHistory, nil, nil)
	profile := &domain.Applicant{
		CorpHistory: []domain.CorpRecord{
			{CorporationID: 7, CorporationName: "Flagged", Start: fetchedAt.AddDate(-1, 0, 0), IsHostile: true},
		},
		FetchedAt: fetchedAt,
	}
	findings, err := c.Evaluate(profile)
	require.NoError(t, err)
	assert.Contains(t, codes(findings), flags.KnownSpyCorp)
}

func TestCorpHistoryHostileAlliance(t *testing.T) {
	c := NewCorpHistory(config.Default().Thresholds.CorpHistory, nil, []int64{99005678})
	profile := &domain.Applicant{
		AllianceID:   99005678,
		AllianceName: "Hostile Bloc",
		CorpHistory: []domain.CorpRecord{
			{CorporationID: 42, Start: fetchedAt.AddDate(-1, 0, 0)},
		},
		FetchedAt: fetchedAt,
	}
	findings, err := c.Evaluate(profile)
	require.NoError(t, err)

	f := byCode(t, findings, flags.KnownSpyCorp)
	assert.Equal(t, int64(99005678), f.Evidence["alliance_id"])
}

func TestCorpHistoryShortTenure(t *testing.T) {
	c := NewCorpHistory(config.Default().Thresholds.CorpHistory, nil, nil)
	profile := &domain.Applicant{
		CorpHistory: []domain.CorpRecord{
			{CorporationID: 42, CorporationName: "New Home", Start: fetchedAt.AddDate(0, 0, -10)},
		},
		FetchedAt: fetchedAt,
	}
	findings, err := c.Evaluate(profile)
	require.NoError(t, err)

	f := byCode(t, findings, flags.ShortTenure)
	assert.InDelta(t, 0.75, f.Confidence, 1e-9)
	assert.Equal(t, 10, f.Evidence["duration_days"])
}

func TestCorpHistoryEstablishedAndClean(t *testing.T) {
	c := NewCorpHistory(config.Default().Thresholds.CorpHistory, nil, nil)
	profile := &domain.Applicant{
		CorpHistory: []domain.CorpRecord{
			{CorporationID: 42, CorporationName: "Long Home", Start: fetchedAt.AddDate(0, 0, -800)},
		},
		FetchedAt: fetchedAt,
	}
	findings, err := c.Evaluate(profile)
	require.NoError(t, err)

	assert.Contains(t, codes(findings), flags.Established)
	assert.Contains(t, codes(findings), flags.CleanHistory)
	assert.NotContains(t, codes(findings), flags.ShortTenure)
}

func TestCorpHistoryNPCPattern(t *testing.T) {
	c := NewCorpHistory(config.Default().Thresholds.CorpHistory, nil, nil)
	end1 := fetchedAt.AddDate(0, 0, -400)
	end2 := fetchedAt.AddDate(0, 0, -100)
	profile := &domain.Applicant{
		CorpHistory: []domain.CorpRecord{
			{CorporationID: 42, Start: fetchedAt.AddDate(0, 0, -90)},
			{CorporationID: 1000009, IsNPC: true, Start: fetchedAt.AddDate(0, 0, -300), End: &end2},
			{CorporationID: 1000009, IsNPC: true, Start: fetchedAt.AddDate(0, 0, -500), End: &end1},
		},
		FetchedAt: fetchedAt,
	}
	findings, err := c.Evaluate(profile)
	require.NoError(t, err)

	f := byCode(t, findings, flags.NPCCorpPattern)
	assert.Equal(t, 2, f.Evidence["npc_stints"])
}

func TestCorpHistoryEmptyHistory(t *testing.T) {
	c := NewCorpHistory(config.Default().Thresholds.CorpHistory, nil, nil)
	findings, err := c.Evaluate(&domain.Applicant{FetchedAt: fetchedAt})
	require.NoError(t, err)
	assert.Empty(t, findings)
}
