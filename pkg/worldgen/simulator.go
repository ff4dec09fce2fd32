package worldgen

// SimConfig is the (out-of-scope) simulator configuration; only the fields
// the mining core's stand-in simulator needs are modeled.
type SimConfig struct {
	DayLengthSeconds float64
}

// DefaultSimConfig returns the stand-in simulator's defaults.
func DefaultSimConfig() SimConfig {
	return SimConfig{DayLengthSeconds: 1.0}
}

// Simulator is a reusable per-worker simulation instance bound to a
// SimConfig, mirroring the external contract of spec.md §6: stepOnce,
// refreshDerivedStats, resetTimer. Reused across seeds by the Miner driver
// (one instance per worker, §4.5) so it must hold no per-world state beyond
// its accumulated timer.
type Simulator struct {
	cfg   SimConfig
	timer float64
}

// NewSimulator creates a simulator bound to cfg.
func NewSimulator(cfg SimConfig) *Simulator {
	return &Simulator{cfg: cfg}
}

// ResetTimer zeroes the simulator's internal time accumulator, as required
// before mining a fresh seed (spec.md §4.4 step 2).
func (s *Simulator) ResetTimer() {
	s.timer = 0
}

// StepOnce advances the world by one simulated day. Deterministic in
// (world's current tile field, day index, cfg): population/happiness/money
// and the other KPIs evolve from simple, stable closed-form functions of the
// tile census and the elapsed day count, so that repeated mining of the
// same seed with the same day count reproduces bit-identical stats.
func (s *Simulator) StepOnce(w *World) {
	s.timer += s.cfg.DayLengthSeconds
	w.stats.Day++
	s.recompute(w)
}

// RefreshDerivedStats recomputes derived KPIs without advancing the day
// counter, so day=0 runs still produce a sane Stats snapshot (spec.md §4.4
// step 2: "so day=0 runs still produce sane derived stats").
func (s *Simulator) RefreshDerivedStats(w *World) {
	s.recompute(w)
}

func (s *Simulator) recompute(w *World) {
	var water, road, res, com, ind, park, school, hospital, police, fire int
	var occupants int
	var heightSum float64

	for _, t := range w.tiles {
		switch t.Terrain {
		case TerrainWater:
			water++
		}
		switch t.Overlay {
		case OverlayRoad:
			road++
		case OverlayResidential:
			res++
		case OverlayCommercial:
			com++
		case OverlayIndustrial:
			ind++
		case OverlayPark:
			park++
		case OverlaySchool:
			school++
		case OverlayHospital:
			hospital++
		case OverlayPoliceStation:
			police++
		case OverlayFireStation:
			fire++
		}
		occupants += int(t.Occupants)
		heightSum += float64(t.Height)
	}

	area := float64(len(w.tiles))
	if area < 1 {
		area = 1
	}

	day := float64(w.stats.Day)
	population := float64(occupants) * (1.0 + 0.01*day)
	jobs := float64(com+ind) * 6.0
	housing := float64(res) * 8.0

	happiness := clamp01(0.55 + 0.08*float64(park+school+hospital+fire+police)/area*100 - 0.04*day/30.0)
	congestion := clamp01(float64(population) / (1.0 + float64(road)*25.0))
	goods := clamp01(0.5 + 0.3*float64(com)/area*50)
	services := clamp01(0.5 + 0.25*float64(school+hospital+police+fire)/area*80)
	avgLandValue := clamp01(0.3 + 0.4*(heightSum/area) + 0.1*float64(park)/area*50)
	money := jobs*120 - housing*40 + population*2.5

	w.stats.Population = population
	w.stats.Happiness = happiness
	w.stats.Money = money
	w.stats.AvgLandValue = avgLandValue
	w.stats.TrafficCongestion = congestion
	w.stats.GoodsSatisfaction = goods
	w.stats.ServicesOverallSatisfaction = services
	w.stats.TransitRidership = clamp01(float64(road) / area * 10)
	w.stats.TradeVolume = jobs * goods
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
