package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskLevelFromScore_Bands(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  RiskLevel
	}{
		{"zero is very low", 0.0, RiskVeryLow},
		{"just below low boundary", 1.999, RiskVeryLow},
		{"low boundary inclusive", 2.0, RiskLow},
		{"just below medium boundary", 3.999, RiskLow},
		{"medium boundary inclusive", 4.0, RiskMedium},
		{"high boundary inclusive", 6.0, RiskHigh},
		{"very high boundary inclusive", 8.0, RiskVeryHigh},
		{"ten is critical", 10.0, RiskCritical},
		{"above ten stays critical", 15.0, RiskCritical},
		{"negative clamps to very low", -1.0, RiskVeryLow},
		{"large negative clamps to very low", -100.0, RiskVeryLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskLevelFromScore(tt.score))
		})
	}
}
