package scorers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeightProfiles(t *testing.T) {
	profiles := DefaultWeightProfiles()

	for _, st := range domain.StockTypes {
		table := profiles.For(st)
		assert.Equal(t, 2.0, table.Weight(scoring.IndicatorPER))
		assert.Equal(t, 2.0, table.Weight(scoring.IndicatorROE))
		assert.Equal(t, 1.5, table.Weight(scoring.IndicatorMAAlignment))
		assert.Equal(t, 1.5, table.Weight(scoring.Indicator52WeekPos))
		assert.Equal(t, 0.8, table.Weight(scoring.IndicatorForeignRatio))
		assert.Equal(t, 0.5, table.Weight(scoring.IndicatorMarketCap))
		assert.Equal(t, 1.0, table.Weight(scoring.IndicatorRSI))
	}

	assert.Len(t, profiles.All(), len(domain.StockTypes))
}

func TestParseWeightProfiles(t *testing.T) {
	data := []byte(`
profiles:
  growth:
    PER: 1.0
    MA Alignment: 2.5
  dividend:
    Foreign Ratio: 0
`)

	profiles, err := ParseWeightProfiles(data)
	require.NoError(t, err)

	growth := profiles.For(domain.Growth)
	assert.Equal(t, 1.0, growth.Weight(scoring.IndicatorPER))
	assert.Equal(t, 2.5, growth.Weight(scoring.IndicatorMAAlignment))
	assert.Equal(t, 2.0, growth.Weight(scoring.IndicatorROE), "unlisted indicators keep canonical weight")

	assert.Equal(t, 0.0, profiles.For(domain.Dividend).Weight(scoring.IndicatorForeignRatio))
	assert.Equal(t, 2.0, profiles.For(domain.Value).Weight(scoring.IndicatorPER), "unlisted types keep canonical table")
}

func TestParseWeightProfiles_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown type", "profiles:\n  momentum:\n    PER: 1\n"},
		{"negative weight", "profiles:\n  growth:\n    PER: -1\n"},
		{"not yaml", "profiles: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWeightProfiles([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadWeightProfiles(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		profiles, err := LoadWeightProfiles("")
		require.NoError(t, err)
		assert.Equal(t, 2.0, profiles.For(domain.Growth).Weight(scoring.IndicatorPER))
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "weights.yaml")
		require.NoError(t, os.WriteFile(path, []byte("profiles:\n  value:\n    PBR: 3\n"), 0644))

		profiles, err := LoadWeightProfiles(path)
		require.NoError(t, err)
		assert.Equal(t, 3.0, profiles.For(domain.Value).Weight(scoring.IndicatorPBR))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadWeightProfiles(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
