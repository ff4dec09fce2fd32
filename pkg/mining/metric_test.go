package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func TestMetricParseAndName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		alias string
		want  mining.Metric
	}{
		{"population", mining.MetricPopulation},
		{"Avg_Land_Value", mining.MetricAvgLandValue},
		{"services-overall-satisfaction", mining.MetricServicesOverallSatisfaction},
		{"FLOOD.RISK", mining.MetricFloodRisk},
		{"objectivescore", mining.MetricObjectiveScore},
	}
	for _, c := range cases {
		t.Run(c.alias, func(t *testing.T) {
			t.Parallel()
			got, err := mining.ParseMetric(c.alias)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}

	_, err := mining.ParseMetric("not-a-real-metric")
	assert.Error(t, err)
}

func TestMetricValue(t *testing.T) {
	t.Parallel()

	r := mining.MineRecord{
		Stats:        worldgen.Stats{Population: 120, Happiness: 0.5},
		SeaFloodFrac: 0.1,
		PondFrac:     0.2,
		SeaMaxDepth:  0.4,
		PondMaxDepth: 0.2,
		Score:        42,
	}

	assert.Equal(t, 120.0, mining.MetricPopulation.Value(r))
	assert.Equal(t, 0.5, mining.MetricHappiness.Value(r))
	assert.Equal(t, 42.0, mining.MetricScore.Value(r))
	assert.InDelta(t, 0.1+0.2+0.25*(0.4+0.2), mining.MetricFloodRisk.Value(r), 1e-12)
}

func TestRecordAreaClampsToOne(t *testing.T) {
	t.Parallel()
	r := mining.MineRecord{W: 0, H: 0}
	assert.Equal(t, 1.0, r.Area())

	r2 := mining.MineRecord{W: 10, H: 20}
	assert.Equal(t, 200.0, r2.Area())
}

func TestParseSeedSamplerAndObjective(t *testing.T) {
	t.Parallel()

	s, err := mining.ParseSeedSampler("van-der-corput2")
	require.NoError(t, err)
	assert.Equal(t, mining.SamplerVanDerCorput2, s)

	o, err := mining.ParseObjective("resilience")
	require.NoError(t, err)
	assert.Equal(t, mining.ObjectiveResilient, o)

	_, err = mining.ParseSeedSampler("bogus")
	assert.Error(t, err)
}
