package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendations(t *testing.T) {
	recs := Recommendations()
	require.Len(t, recs, 3)
	assert.Equal(t, "저위험", recs[0].Tier)
	assert.Equal(t, "고위험", recs[2].Tier)

	recs[0].Tier = "changed"
	assert.Equal(t, "저위험", Recommendations()[0].Tier)
}

func TestRecommendationFor(t *testing.T) {
	assert.Equal(t, "강화 스틸 + 센서", RecommendationFor(RiskHigh).BarrierType)
	assert.Equal(t, "기본 알루미늄", RecommendationFor(RiskLow).BarrierType)
}

func TestPastFloodCases(t *testing.T) {
	cases := PastFloodCases()
	require.Len(t, cases, 3)
	assert.Equal(t, 2025, cases[0].Year)
	assert.InDelta(t, 411.9, cases[0].RainfallMM, 1e-9)
	assert.Equal(t, 2023, cases[2].Year)
}

func TestAlertText(t *testing.T) {
	assert.Contains(t, AlertText(100), "현재 강수량: 100mm")
	assert.Contains(t, AlertText(12.5), "현재 강수량: 12.5mm")
	assert.Contains(t, AlertText(0), "80% ↑")
}
