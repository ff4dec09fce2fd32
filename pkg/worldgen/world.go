// Package worldgen implements the minimal deterministic procedural world
// generator and simulator contract that the mining core consumes
// (spec.md §6: GenerateWorld, stepOnce, refreshDerivedStats, resetTimer).
// The real isocity world generator and simulator are out of scope; this is
// a self-contained stand-in that is deterministic in (w, h, seed, procCfg)
// and produces the same KPI shape §4.13/§3 expects.
package worldgen

import "math"

// TerrainKind is the base terrain of a tile.
type TerrainKind uint8

const (
	TerrainWater TerrainKind = iota
	TerrainSand
	TerrainGrass
)

// OverlayKind is the built overlay (if any) placed on a tile.
type OverlayKind uint8

const (
	OverlayNone OverlayKind = iota
	OverlayPark
	OverlayRoad
	OverlayResidential
	OverlayCommercial
	OverlayIndustrial
	OverlaySchool
	OverlayHospital
	OverlayPoliceStation
	OverlayFireStation
)

// Tile is one cell of the world grid.
type Tile struct {
	Terrain   TerrainKind
	Overlay   OverlayKind
	Height    float32 // [0,1]
	Level     uint8   // [1,3] for residential/commercial/industrial, 0 otherwise
	Occupants uint16
	District  uint8
}

// Stats is the simulator's KPI snapshot, read by MineOne and the
// expression VM (spec.md §4.13).
type Stats struct {
	Day                          int
	Population                   float64
	Happiness                    float64
	Money                        float64
	AvgLandValue                 float64
	TrafficCongestion            float64
	GoodsSatisfaction            float64
	ServicesOverallSatisfaction  float64
	TransitRidership             float64
	TradeVolume                  float64
}

// ProcGenConfig is the (out-of-scope) procedural generator configuration;
// only fields the mining core reads (spec.md §9 "seaLevelOverride... taken
// from the proc config's waterLevel") are modeled.
type ProcGenConfig struct {
	WaterLevel float64
}

// DefaultProcGenConfig returns the stand-in generator's defaults.
func DefaultProcGenConfig() ProcGenConfig {
	return ProcGenConfig{WaterLevel: 0.35}
}

// World is a generated, steppable grid.
type World struct {
	w, h  int
	tiles []Tile
	stats Stats
}

// Width returns the world's tile width.
func (w *World) Width() int { return w.w }

// Height returns the world's tile height.
func (w *World) Height() int { return w.h }

// At returns the tile at (x, y). Out-of-range coordinates are clamped.
func (w *World) At(x, y int) Tile {
	x = clampInt(x, 0, w.w-1)
	y = clampInt(y, 0, w.h-1)
	return w.tiles[y*w.w+x]
}

// Stats returns the world's current KPI snapshot.
func (w *World) Stats() Stats { return w.stats }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// splitmix64 is one SplitMix64 step: the golden-ratio increment followed
// by the same output mix as the seed sampler's splitMix64Mix in
// pkg/mining; written out here to keep worldgen free of a dependency on
// the mining package.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return z
}

// GenerateWorld deterministically builds a w x h world from seed, mirroring
// the external contract of spec.md §6's GenerateWorld. Terrain is derived
// from a coherent low-frequency height field seeded by splitmix64, overlays
// are assigned deterministically from the same stream, and the initial
// Stats are zeroed pending refreshDerivedStats/stepOnce.
func GenerateWorld(w, h int, seed uint64, procCfg ProcGenConfig) *World {
	world := &World{w: w, h: h, tiles: make([]Tile, w*h)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			cellSeed := splitmix64(seed ^ uint64(idx)*0x9E3779B97F4A7C15)
			height := heightField(x, y, w, h, seed)

			terrain := TerrainGrass
			if height < procCfg.WaterLevel {
				terrain = TerrainWater
			} else if height < procCfg.WaterLevel+0.05 {
				terrain = TerrainSand
			}

			overlay := OverlayNone
			level := uint8(0)
			if terrain == TerrainGrass {
				r := float64(cellSeed%1000) / 1000.0
				switch {
				case r < 0.05:
					overlay = OverlayRoad
				case r < 0.30:
					overlay = OverlayResidential
					level = uint8(1 + cellSeed%3)
				case r < 0.42:
					overlay = OverlayCommercial
					level = uint8(1 + (cellSeed>>3)%3)
				case r < 0.50:
					overlay = OverlayIndustrial
					level = uint8(1 + (cellSeed>>6)%3)
				case r < 0.53:
					overlay = OverlayPark
				case r < 0.535:
					overlay = OverlaySchool
				case r < 0.538:
					overlay = OverlayHospital
				case r < 0.541:
					overlay = OverlayPoliceStation
				case r < 0.544:
					overlay = OverlayFireStation
				}
			}

			world.tiles[idx] = Tile{
				Terrain:   terrain,
				Overlay:   overlay,
				Height:    float32(height),
				Level:     level,
				Occupants: uint16(cellSeed % 8),
				District:  uint8((cellSeed >> 9) % 4),
			}
		}
	}

	return world
}

// heightField is a small deterministic coherent-noise stand-in: a sum of a
// handful of seeded sinusoids, normalized to [0,1].
func heightField(x, y, w, h int, seed uint64) float64 {
	fx := float64(x) / float64(max(w, 1))
	fy := float64(y) / float64(max(h, 1))

	s1 := float64(seed%997) / 997.0
	s2 := float64((seed>>16)%991) / 991.0

	v := 0.5 + 0.25*math.Sin(2*math.Pi*(fx*3+s1)) +
		0.25*math.Cos(2*math.Pi*(fy*2.5+s2)) +
		0.15*math.Sin(2*math.Pi*(fx*7+fy*5+s1*s2))
	v = (v + 0.65) / 2.3
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
