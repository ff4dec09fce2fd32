package mining_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func TestParseTraceMetricAliases(t *testing.T) {
	t.Parallel()

	cases := []struct {
		alias string
		want  mining.TraceMetric
	}{
		{"population", mining.TracePopulation},
		{"Pop", mining.TracePopulation},
		{"happiness", mining.TraceHappiness},
		{"money", mining.TraceMoney},
		{"Avg-Land.Value", mining.TraceAvgLandValue},
		{"congestion", mining.TraceTrafficCongestion},
		{"goods_satisfaction", mining.TraceGoodsSatisfaction},
		{"services", mining.TraceServicesOverallSatisfaction},
		{"ridership", mining.TraceTransitRidership},
		{"trade", mining.TraceTradeVolume},
	}
	for _, c := range cases {
		t.Run(c.alias, func(t *testing.T) {
			t.Parallel()
			got, err := mining.ParseTraceMetric(c.alias)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}

	_, err := mining.ParseTraceMetric("not-a-real-trace-metric")
	assert.Error(t, err)
}

func TestParseTraceMetricListDedupesPreservingOrder(t *testing.T) {
	t.Parallel()

	got, err := mining.ParseTraceMetricList("money, population, Money, happiness")
	require.NoError(t, err)
	assert.Equal(t, []mining.TraceMetric{mining.TraceMoney, mining.TracePopulation, mining.TraceHappiness}, got)
}

func TestParseTraceMetricListEmptyReturnsNil(t *testing.T) {
	t.Parallel()

	got, err := mining.ParseTraceMetricList("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = mining.ParseTraceMetricList("   ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseTraceMetricListUnknownTokenErrors(t *testing.T) {
	t.Parallel()

	_, err := mining.ParseTraceMetricList("population,bogus")
	assert.Error(t, err)
}

func TestDefaultTraceMetrics(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []mining.TraceMetric{
		mining.TracePopulation, mining.TraceHappiness, mining.TraceTrafficCongestion, mining.TraceMoney,
	}, mining.DefaultTraceMetrics())
}

func TestTraceMetricValueExtractsEachField(t *testing.T) {
	t.Parallel()

	s := worldgen.Stats{
		Population: 100, Happiness: 0.5, Money: 200, AvgLandValue: 3,
		TrafficCongestion: 0.2, GoodsSatisfaction: 0.6, ServicesOverallSatisfaction: 0.7,
		TransitRidership: 0.4, TradeVolume: 900,
	}

	assert.Equal(t, 100.0, mining.TraceMetricValue(s, mining.TracePopulation))
	assert.Equal(t, 0.5, mining.TraceMetricValue(s, mining.TraceHappiness))
	assert.Equal(t, 200.0, mining.TraceMetricValue(s, mining.TraceMoney))
	assert.Equal(t, 3.0, mining.TraceMetricValue(s, mining.TraceAvgLandValue))
	assert.Equal(t, 0.2, mining.TraceMetricValue(s, mining.TraceTrafficCongestion))
	assert.Equal(t, 0.6, mining.TraceMetricValue(s, mining.TraceGoodsSatisfaction))
	assert.Equal(t, 0.7, mining.TraceMetricValue(s, mining.TraceServicesOverallSatisfaction))
	assert.Equal(t, 0.4, mining.TraceMetricValue(s, mining.TraceTransitRidership))
	assert.Equal(t, 900.0, mining.TraceMetricValue(s, mining.TraceTradeVolume))
}

func TestTraceMetricValueNonFiniteBecomesZero(t *testing.T) {
	t.Parallel()

	s := worldgen.Stats{Population: math.NaN(), Happiness: math.Inf(1)}
	assert.Equal(t, 0.0, mining.TraceMetricValue(s, mining.TracePopulation))
	assert.Equal(t, 0.0, mining.TraceMetricValue(s, mining.TraceHappiness))
}

func TestTraceMetricName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "population", mining.TracePopulation.Name())
	assert.Equal(t, "trade_volume", mining.TraceTradeVolume.Name())
}

func TestMineOneSeedCapturesOneSamplePerDayWhenTraceMetricsSet(t *testing.T) {
	t.Parallel()

	cfg := smallMineConfig(1, 1)
	cfg.Days = 5
	cfg.TraceMetrics = []mining.TraceMetric{mining.TracePopulation, mining.TraceMoney}
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}

	records, err := mining.MineSeeds(cfg, proc, sim, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	tr := records[0].Traces
	require.NotNil(t, tr)
	assert.Equal(t, cfg.TraceMetrics, tr.Metrics)
	assert.Len(t, tr.Series[mining.TracePopulation], cfg.Days)
	assert.Len(t, tr.Series[mining.TraceMoney], cfg.Days)
}

func TestMineOneSeedLeavesTracesNilWhenNoMetricsRequested(t *testing.T) {
	t.Parallel()

	cfg := smallMineConfig(1, 1)
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}

	records, err := mining.MineSeeds(cfg, proc, sim, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Traces)
}
