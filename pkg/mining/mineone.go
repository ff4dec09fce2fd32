package mining

import (
	"math"

	"github.com/procisocity/seedminer/pkg/hydrology"
	"github.com/procisocity/seedminer/pkg/mining/expr"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

// WeightsForObjective returns the preset ScoreWeights for an Objective
// (spec.md §4.4 step 5). Values are ported verbatim, per objective, from
// original_source/src/isocity/SeedMiner.cpp:186-246's ScoreWeights/
// WeightsForObjective — not re-derived as multiples of a flat base.
func WeightsForObjective(o Objective) ScoreWeights {
	balanced := ScoreWeights{
		Population:           1.0,
		Happiness:            1800.0,
		Money:                0.05,
		LandValue:            900.0,
		GoodsSatisfaction:    700.0,
		ServicesSatisfaction: 500.0,
		Congestion:           1400.0,
		SeaFloodFrac:         1000.0,
		SeaMaxDepth:          2500.0,
		PondFrac:             700.0,
		PondMaxDepth:         2000.0,
	}

	switch o {
	case ObjectiveBalanced:
		return balanced
	case ObjectiveGrowth:
		w := balanced
		w.Population = 1.4
		w.Money = 0.08
		w.Congestion = 1000.0
		w.SeaFloodFrac = 650.0
		w.SeaMaxDepth = 1600.0
		w.PondFrac = 500.0
		w.PondMaxDepth = 1200.0
		return w
	case ObjectiveResilient:
		w := balanced
		w.Population = 0.9
		w.Happiness = 2000.0
		w.Congestion = 1500.0
		w.SeaFloodFrac = 1600.0
		w.SeaMaxDepth = 5200.0
		w.PondFrac = 1400.0
		w.PondMaxDepth = 4200.0
		return w
	case ObjectiveChaos:
		// Invert the "health" incentives: find worlds that are likely to
		// stress-test flooding, ponding, and congestion behavior.
		w := balanced
		w.Population = 0.2
		w.Happiness = -1200.0 // prefer unhappy
		w.Money = -0.05       // prefer broke
		w.LandValue = -700.0
		w.GoodsSatisfaction = -600.0
		w.ServicesSatisfaction = -600.0
		w.Congestion = -2500.0 // negative penalty = reward
		w.SeaFloodFrac = -1800.0
		w.SeaMaxDepth = -5200.0
		w.PondFrac = -2200.0
		w.PondMaxDepth = -6200.0
		return w
	default:
		return balanced
	}
}

// ComputeScore computes a record's raw objective score from its stats and
// the resolved ScoreWeights (spec.md §4.4 step 5). The mixed weight units
// and scalar scaling factors (happyScale, services scale) are preserved
// literally per spec.md §9's Open Question.
func ComputeScore(r MineRecord, w ScoreWeights) float64 {
	pop := r.Stats.Population

	positive := w.Population*pop +
		w.Happiness*r.Stats.Happiness*(0.10*pop+500) +
		w.Money*r.Stats.Money +
		w.LandValue*r.Stats.AvgLandValue*1000 +
		w.GoodsSatisfaction*r.Stats.GoodsSatisfaction*0.25*1000 +
		w.ServicesSatisfaction*r.Stats.ServicesOverallSatisfaction*(0.05*pop+250)

	penalty := w.Congestion*r.Stats.TrafficCongestion*(0.05*pop+200) +
		w.SeaFloodFrac*r.SeaFloodFrac*1000 +
		w.SeaMaxDepth*r.SeaMaxDepth*1000 +
		w.PondFrac*r.PondFrac*1000 +
		w.PondMaxDepth*r.PondMaxDepth*1000

	return positive - penalty
}

// FeatureVectorRaw builds the raw 7-D feature vector MMR selection uses
// (spec.md §4.6 step 2): population/area, happiness, trafficCongestion,
// seaFloodFrac, pondMaxDepth, avgLandValue, roadTiles/area.
func FeatureVectorRaw(r MineRecord) [7]float64 {
	area := r.Area()
	return [7]float64{
		r.Stats.Population / area,
		r.Stats.Happiness,
		r.Stats.TrafficCongestion,
		r.SeaFloodFrac,
		r.PondMaxDepth,
		r.Stats.AvgLandValue,
		float64(r.RoadTiles) / area,
	}
}

// resolveSeaLevel resolves the effective sea level: seaLevelOverride when
// finite, otherwise the proc config's waterLevel (spec.md §9 Open Question:
// "When seaLevelOverride is non-finite, the effective sea level is taken
// from the proc config's waterLevel. This is implicit in the pipeline;
// preserve it explicitly.").
func resolveSeaLevel(seaLevelOverride float64, procCfg worldgen.ProcGenConfig) float64 {
	if math.IsNaN(seaLevelOverride) || math.IsInf(seaLevelOverride, 0) {
		return procCfg.WaterLevel
	}
	return seaLevelOverride
}

// MineOneSeed runs the full per-seed pipeline (spec.md §4.4): generate,
// simulate, count tiles, hydrology, score.
func MineOneSeed(
	index int, seed uint64,
	cfg Config, procCfg worldgen.ProcGenConfig, sim *worldgen.Simulator,
	scoreProgram *expr.Program,
) MineRecord {
	world := worldgen.GenerateWorld(cfg.W, cfg.H, seed, procCfg)

	var trace *MineTrace
	if len(cfg.TraceMetrics) > 0 {
		trace = newMineTrace(cfg.TraceMetrics)
	}

	sim.ResetTimer()
	for d := 0; d < cfg.Days; d++ {
		sim.StepOnce(world)
		if trace != nil {
			sim.RefreshDerivedStats(world)
			trace.sample(world.Stats())
		}
	}
	sim.RefreshDerivedStats(world)

	rec := MineRecord{
		Index:  index,
		Seed:   seed,
		W:      cfg.W,
		H:      cfg.H,
		Stats:  world.Stats(),
		Traces: trace,
	}

	countTiles(world, &rec)
	rec.OverlayPHash = ComputeWorldOverlayPHash(world)

	if cfg.HydrologyEnabled {
		applyHydrology(world, cfg, procCfg, &rec)
	}

	weights := WeightsForObjective(cfg.Objective)
	rec.ObjectiveScore = ComputeScore(rec, weights)
	rec.Score = rec.ObjectiveScore

	if scoreProgram != nil {
		val, err := scoreProgram.Eval(varsForRecord(rec))
		if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
			rec.Score = -1e30
		} else {
			rec.Score = clampScore(val)
		}
	}

	return rec
}

func clampScore(v float64) float64 {
	if v > 1e30 {
		return 1e30
	}
	if v < -1e30 {
		return -1e30
	}
	return v
}

func countTiles(w *worldgen.World, rec *MineRecord) {
	width, height := w.Width(), w.Height()
	var water, road, res, com, ind, park, school, hospital, police, fire int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := w.At(x, y)
			if t.Terrain == worldgen.TerrainWater {
				water++
			}
			switch t.Overlay {
			case worldgen.OverlayRoad:
				road++
			case worldgen.OverlayResidential:
				res++
			case worldgen.OverlayCommercial:
				com++
			case worldgen.OverlayIndustrial:
				ind++
			case worldgen.OverlayPark:
				park++
			case worldgen.OverlaySchool:
				school++
			case worldgen.OverlayHospital:
				hospital++
			case worldgen.OverlayPoliceStation:
				police++
			case worldgen.OverlayFireStation:
				fire++
			}
		}
	}

	area := float64(width * height)
	if area < 1 {
		area = 1
	}

	rec.WaterTiles, rec.RoadTiles = water, road
	rec.ResTiles, rec.ComTiles, rec.IndTiles = res, com, ind
	rec.ParkTiles, rec.SchoolTiles, rec.HospitalTiles = park, school, hospital
	rec.PoliceTiles, rec.FireTiles = police, fire

	rec.WaterFrac = float64(water) / area
	rec.RoadFrac = float64(road) / area
	rec.ZoneFrac = float64(res+com+ind) / area
	rec.ParkFrac = float64(park) / area
}

func applyHydrology(w *worldgen.World, cfg Config, procCfg worldgen.ProcGenConfig, rec *MineRecord) {
	width, height := w.Width(), w.Height()
	heights := make([]float64, width*height)
	drain := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			t := w.At(x, y)
			heights[idx] = float64(t.Height)
			drain[idx] = t.Terrain == worldgen.TerrainWater && t.Overlay == worldgen.OverlayNone
		}
	}

	seaLevel := resolveSeaLevel(cfg.SeaLevelOverride, procCfg)
	flood := hydrology.ComputeSeaLevelFlood(heights, width, height, seaLevel, hydrology.SeaFloodConfig{
		RequireEdgeConnection: cfg.SeaRequireEdgeConnection,
		EightConnected:        cfg.SeaEightConnected,
	})

	area := float64(width * height)
	if area < 1 {
		area = 1
	}
	rec.SeaFloodCells = flood.FloodedCells
	rec.SeaFloodFrac = float64(flood.FloodedCells) / area
	rec.SeaMaxDepth = flood.MaxDepth

	depression := hydrology.FillDepressionsPriorityFlood(heights, width, height, drain, hydrology.DepressionFillConfig{
		Epsilon: cfg.DepressionEpsilon,
	})
	rec.PondCells = depression.FilledCells
	rec.PondFrac = float64(depression.FilledCells) / area
	rec.PondMaxDepth = depression.MaxDepth
	rec.PondVolume = depression.Volume
}

// varsForRecord builds the expr.Vars lookup for a record, mirroring
// spec.md §4.13's variable table.
func varsForRecord(r MineRecord) expr.Vars {
	return expr.Vars{
		"seed":                          float64(r.Seed),
		"w":                              float64(r.W),
		"h":                              float64(r.H),
		"area":                           r.Area(),
		"day":                            float64(r.Stats.Day),
		"population":                     r.Stats.Population,
		"happiness":                      r.Stats.Happiness,
		"money":                          r.Stats.Money,
		"avg_land_value":                 r.Stats.AvgLandValue,
		"traffic_congestion":             r.Stats.TrafficCongestion,
		"goods_satisfaction":             r.Stats.GoodsSatisfaction,
		"services_overall_satisfaction":  r.Stats.ServicesOverallSatisfaction,
		"pop_density":                    r.Stats.Population / r.Area(),
		"road_density":                   float64(r.RoadTiles) / r.Area(),
		"zone_density":                   r.ZoneFrac,
		"water_tiles":                    float64(r.WaterTiles),
		"road_tiles":                     float64(r.RoadTiles),
		"res_tiles":                      float64(r.ResTiles),
		"com_tiles":                      float64(r.ComTiles),
		"ind_tiles":                      float64(r.IndTiles),
		"park_tiles":                     float64(r.ParkTiles),
		"school_tiles":                   float64(r.SchoolTiles),
		"hospital_tiles":                 float64(r.HospitalTiles),
		"police_tiles":                   float64(r.PoliceTiles),
		"fire_tiles":                     float64(r.FireTiles),
		"water_frac":                     r.WaterFrac,
		"road_frac":                      r.RoadFrac,
		"zone_frac":                      r.ZoneFrac,
		"park_frac":                      r.ParkFrac,
		"sea_flood_cells":                float64(r.SeaFloodCells),
		"sea_flood_frac":                 r.SeaFloodFrac,
		"sea_max_depth":                  r.SeaMaxDepth,
		"pond_cells":                     float64(r.PondCells),
		"pond_frac":                      r.PondFrac,
		"pond_max_depth":                 r.PondMaxDepth,
		"pond_volume":                    r.PondVolume,
		"flood_risk":                     r.FloodRisk(),
		"score":                          r.Score,
		"objective_score":                r.ObjectiveScore,
	}
}
