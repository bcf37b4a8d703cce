package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/domain"
)

func TestLookup(t *testing.T) {
	def, err := Lookup(KnownSpyCorp)
	require.NoError(t, err)
	assert.Equal(t, KnownSpyCorp, def.Code)
	assert.Equal(t, domain.SeverityRed, def.Severity)
	assert.Equal(t, domain.CategoryCorpHistory, def.Category)
	assert.NotEmpty(t, def.Description)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("NOT_A_FLAG")
	require.ErrorIs(t, err, ErrUnknownFlag)
}

func TestCatalogComplete(t *testing.T) {
	// Every code constant must be registered, with the tier its const block
	// promises.
	bySeverity := map[domain.Severity][]string{
		domain.SeverityRed:    {KnownSpyCorp, AwoxHistory, RapidCorpHop, RMTPattern, HiddenAlts},
		domain.SeverityYellow: {LowActivity, ShortTenure, NoAssets, TimezoneMismatch, InactivePeriod, NPCCorpPattern, LargePreJoinTransfer, UndeclaredAlts, HighSecOnly},
		domain.SeverityGreen:  {ActivePvper, Established, CleanHistory, CapitalPilot, TransparentAlts},
	}
	total := 0
	for severity, codes := range bySeverity {
		for _, code := range codes {
			def, err := Lookup(code)
			require.NoError(t, err, code)
			assert.Equal(t, severity, def.Severity, code)
			total++
		}
	}
	assert.Len(t, Codes(), total)
}
