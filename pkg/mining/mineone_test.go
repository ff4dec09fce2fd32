package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func TestWeightsForObjectiveBalancedMatchesOriginal(t *testing.T) {
	t.Parallel()

	w := mining.WeightsForObjective(mining.ObjectiveBalanced)
	assert.Equal(t, mining.ScoreWeights{
		Population: 1.0, Happiness: 1800.0, Money: 0.05, LandValue: 900.0,
		GoodsSatisfaction: 700.0, ServicesSatisfaction: 500.0,
		Congestion: 1400.0, SeaFloodFrac: 1000.0, SeaMaxDepth: 2500.0,
		PondFrac: 700.0, PondMaxDepth: 2000.0,
	}, w)
}

func TestWeightsForObjectiveGrowthMatchesOriginal(t *testing.T) {
	t.Parallel()

	w := mining.WeightsForObjective(mining.ObjectiveGrowth)
	assert.Equal(t, 1.4, w.Population)
	assert.Equal(t, 0.08, w.Money)
	assert.Equal(t, 1000.0, w.Congestion)
	assert.Equal(t, 650.0, w.SeaFloodFrac)
	assert.Equal(t, 1600.0, w.SeaMaxDepth)
	assert.Equal(t, 500.0, w.PondFrac)
	assert.Equal(t, 1200.0, w.PondMaxDepth)
	// Unmentioned fields fall through from Balanced unchanged.
	assert.Equal(t, 1800.0, w.Happiness)
	assert.Equal(t, 900.0, w.LandValue)
}

func TestWeightsForObjectiveResilientMatchesOriginal(t *testing.T) {
	t.Parallel()

	w := mining.WeightsForObjective(mining.ObjectiveResilient)
	assert.Equal(t, 0.9, w.Population)
	assert.Equal(t, 2000.0, w.Happiness)
	assert.Equal(t, 1500.0, w.Congestion)
	assert.Equal(t, 1600.0, w.SeaFloodFrac)
	assert.Equal(t, 5200.0, w.SeaMaxDepth)
	assert.Equal(t, 1400.0, w.PondFrac)
	assert.Equal(t, 4200.0, w.PondMaxDepth)
}

func TestWeightsForObjectiveChaosMatchesOriginal(t *testing.T) {
	t.Parallel()

	w := mining.WeightsForObjective(mining.ObjectiveChaos)
	assert.Equal(t, 0.2, w.Population)
	assert.Equal(t, -1200.0, w.Happiness)
	assert.Equal(t, -0.05, w.Money)
	assert.Equal(t, -700.0, w.LandValue)
	assert.Equal(t, -600.0, w.GoodsSatisfaction)
	assert.Equal(t, -600.0, w.ServicesSatisfaction)
	assert.Equal(t, -2500.0, w.Congestion)
	assert.Equal(t, -1800.0, w.SeaFloodFrac)
	assert.Equal(t, -5200.0, w.SeaMaxDepth)
	assert.Equal(t, -2200.0, w.PondFrac)
	assert.Equal(t, -6200.0, w.PondMaxDepth)
}

func TestComputeScoreMatchesHandComputedValue(t *testing.T) {
	t.Parallel()

	r := mining.MineRecord{
		Stats: worldgen.Stats{
			Population: 1000, Happiness: 0.8, Money: 50000, AvgLandValue: 2.0,
			GoodsSatisfaction: 0.7, ServicesOverallSatisfaction: 0.6, TrafficCongestion: 0.3,
		},
		SeaFloodFrac: 0.05, SeaMaxDepth: 0.1, PondFrac: 0.02, PondMaxDepth: 0.01,
	}
	w := mining.WeightsForObjective(mining.ObjectiveBalanced)

	positive := 1.0*1000 + 1800.0*0.8*(0.10*1000+500) + 0.05*50000 + 900.0*2.0*1000 +
		700.0*0.7*0.25*1000 + 500.0*0.6*(0.05*1000+250)
	penalty := 1400.0*0.3*(0.05*1000+200) + 1000.0*0.05*1000 + 2500.0*0.1*1000 +
		700.0*0.02*1000 + 2000.0*0.01*1000
	want := positive - penalty

	assert.InDelta(t, want, mining.ComputeScore(r, w), 1e-6)
}

func TestFeatureVectorRawDividesByArea(t *testing.T) {
	t.Parallel()

	r := mining.MineRecord{
		W: 10, H: 10,
		Stats:        worldgen.Stats{Population: 500, Happiness: 0.5, TrafficCongestion: 0.2, AvgLandValue: 3},
		SeaFloodFrac: 0.1, PondMaxDepth: 0.2,
		RoadTiles: 20,
	}
	fv := mining.FeatureVectorRaw(r)
	assert.InDelta(t, 5.0, fv[0], 1e-9)  // population / area
	assert.InDelta(t, 0.2, fv[6], 1e-9) // roadTiles / area
}
