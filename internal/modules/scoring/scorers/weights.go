package scorers

import (
	"fmt"
	"math"
	"os"

	"github.com/aristath/stockscore/internal/modules/scoring/domain"
	"gopkg.in/yaml.v3"
)

// WeightProfiles holds one weight table per stock type
type WeightProfiles struct {
	profiles map[domain.StockType]WeightTable
}

// weightsFile is the YAML layout of a weights file:
//
//	profiles:
//	  growth:
//	    PER: 1.5
//	    MA Alignment: 2.0
//
// Types and indicators left out keep their canonical weights.
type weightsFile struct {
	Profiles map[string]map[string]float64 `yaml:"profiles"`
}

// DefaultWeightProfiles uses the canonical table for every stock type
func DefaultWeightProfiles() *WeightProfiles {
	profiles := make(map[domain.StockType]WeightTable, len(domain.StockTypes))
	for _, t := range domain.StockTypes {
		profiles[t] = CanonicalWeightTable()
	}
	return &WeightProfiles{profiles: profiles}
}

// LoadWeightProfiles reads per-type weight overrides from a YAML file.
// An empty path returns the defaults.
func LoadWeightProfiles(path string) (*WeightProfiles, error) {
	if path == "" {
		return DefaultWeightProfiles(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}

	return ParseWeightProfiles(data)
}

// ParseWeightProfiles parses YAML weight overrides on top of the canonical table
func ParseWeightProfiles(data []byte) (*WeightProfiles, error) {
	var file weightsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse weights file: %w", err)
	}

	result := DefaultWeightProfiles()
	for name, overrides := range file.Profiles {
		stockType, ok := domain.ParseStockType(name)
		if !ok {
			return nil, fmt.Errorf("unknown stock type %q in weights file", name)
		}

		merged := result.profiles[stockType].Map()
		for indicator, w := range overrides {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("invalid weight %v for %s/%s", w, name, indicator)
			}
			merged[indicator] = w
		}
		result.profiles[stockType] = NewWeightTable(merged)
	}

	return result, nil
}

// For returns the weight table of a stock type
func (p *WeightProfiles) For(stockType domain.StockType) WeightTable {
	if table, ok := p.profiles[stockType]; ok {
		return table
	}
	return CanonicalWeightTable()
}

// All returns the explicit weights of every profile, keyed by stock type
func (p *WeightProfiles) All() map[domain.StockType]map[string]float64 {
	out := make(map[domain.StockType]map[string]float64, len(p.profiles))
	for t, table := range p.profiles {
		out[t] = table.Map()
	}
	return out
}
