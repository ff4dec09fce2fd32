package mining

import (
	"math"
	"math/bits"
	"sort"

	"github.com/procisocity/seedminer/pkg/worldgen"
)

// PHashConfig controls the downsample/DCT resolution (spec.md §4.2).
type PHashConfig struct {
	DownW, DownH int
	DCTSize      int
}

// DefaultPHashConfig returns the spec's defaults: 32x32 downsample, 8x8 DCT.
func DefaultPHashConfig() PHashConfig {
	return PHashConfig{DownW: 32, DownH: 32, DCTSize: 8}
}

// TilePHashIntensity maps a tile's terrain base, overlay tier, and height
// to a single grayscale scalar (spec.md §4.2).
func TilePHashIntensity(t worldgen.Tile) float64 {
	base := 0.0
	switch t.Terrain {
	case worldgen.TerrainWater:
		base = 0.10
	case worldgen.TerrainSand:
		base = 0.30
	case worldgen.TerrainGrass:
		base = 0.45
	}

	overlayBoost := 0.0
	switch t.Overlay {
	case worldgen.OverlayRoad:
		overlayBoost = 0.05
	case worldgen.OverlayPark:
		overlayBoost = 0.10
	case worldgen.OverlayResidential:
		overlayBoost = 0.20
	case worldgen.OverlayCommercial:
		overlayBoost = 0.30
	case worldgen.OverlayIndustrial:
		overlayBoost = 0.35
	case worldgen.OverlaySchool, worldgen.OverlayHospital,
		worldgen.OverlayPoliceStation, worldgen.OverlayFireStation:
		overlayBoost = 0.25
	}

	levelBoost := float64(t.Level) * 0.05
	return base + overlayBoost + levelBoost + 0.10*float64(t.Height)
}

// sampleFn samples a grayscale projection at continuous (x, y) in
// [0, srcW) x [0, srcH).
type sampleFn func(x, y float64) float64

// ComputeWorldOverlayPHash computes the world's perceptual hash by sampling
// through TilePHashIntensity with bilinear interpolation (spec.md §4.2).
func ComputeWorldOverlayPHash(w *worldgen.World) uint64 {
	srcW, srcH := w.Width(), w.Height()
	sample := func(x, y float64) float64 {
		return bilinearSample(srcW, srcH, x, y, func(xi, yi int) float64 {
			return TilePHashIntensity(w.At(xi, yi))
		})
	}
	return ComputePHash(sample, srcW, srcH, DefaultPHashConfig())
}

// bilinearSample samples get(xi,yi) at continuous coordinates using
// bilinear interpolation with half-pixel centers and clamp-to-edge
// (spec.md §4.2 step 1).
func bilinearSample(srcW, srcH int, x, y float64, get func(xi, yi int) float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := x - x0
	fy := y - y0

	xi0 := clampCoord(int(x0), srcW)
	yi0 := clampCoord(int(y0), srcH)
	xi1 := clampCoord(int(x0)+1, srcW)
	yi1 := clampCoord(int(y0)+1, srcH)

	v00 := get(xi0, yi0)
	v10 := get(xi1, yi0)
	v01 := get(xi0, yi1)
	v11 := get(xi1, yi1)

	top := v00*(1-fx) + v10*fx
	bot := v01*(1-fx) + v11*fx
	return top*(1-fy) + bot*fy
}

func clampCoord(v, n int) int {
	if n <= 0 {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// ComputePHash runs the full pHash pipeline over an arbitrary grayscale
// sampler (spec.md §4.2): bilinear downsample, low-frequency 2-D DCT-II,
// median threshold (excluding the DC term), 64-bit hash emission.
func ComputePHash(sample sampleFn, srcW, srcH int, cfg PHashConfig) uint64 {
	downW, downH := cfg.DownW, cfg.DownH
	if downW <= 0 {
		downW = 32
	}
	if downH <= 0 {
		downH = 32
	}
	n := cfg.DCTSize
	if n <= 0 {
		n = 8
	}
	if limit := minInt(downW, downH); n > limit {
		n = limit
	}
	if n < 1 {
		n = 1
	}

	down := make([]float64, downW*downH)
	for dy := 0; dy < downH; dy++ {
		for dx := 0; dx < downW; dx++ {
			// Half-pixel centers: sample at the center of each downsampled
			// cell, mapped back into source coordinates.
			sx := (float64(dx) + 0.5) * float64(srcW) / float64(downW)
			sy := (float64(dy) + 0.5) * float64(srcH) / float64(downH)
			down[dy*downW+dx] = sample(sx-0.5, sy-0.5)
		}
	}

	cosU := make([][]float64, n)
	for u := 0; u < n; u++ {
		cosU[u] = make([]float64, downW)
		for x := 0; x < downW; x++ {
			cosU[u][x] = math.Cos(math.Pi / float64(downW) * (float64(x) + 0.5) * float64(u))
		}
	}
	cosV := make([][]float64, n)
	for v := 0; v < n; v++ {
		cosV[v] = make([]float64, downH)
		for y := 0; y < downH; y++ {
			cosV[v][y] = math.Cos(math.Pi / float64(downH) * (float64(y) + 0.5) * float64(v))
		}
	}

	alpha := func(k, size int) float64 {
		if k == 0 {
			return math.Sqrt(1.0 / float64(size))
		}
		return math.Sqrt(2.0 / float64(size))
	}

	block := make([]float64, n*n)
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			var sum float64
			for y := 0; y < downH; y++ {
				for x := 0; x < downW; x++ {
					sum += down[y*downW+x] * cosU[u][x] * cosV[v][y]
				}
			}
			block[u*n+v] = alpha(u, downW) * alpha(v, downH) * sum
		}
	}

	vals := make([]float64, 0, n*n-1)
	for i, v := range block {
		if i == 0 {
			continue
		}
		vals = append(vals, v)
	}
	median := medianOf(vals)

	var hash uint64
	total := n * n
	if total > 64 {
		total = 64
	}
	for i := 0; i < total; i++ {
		if block[i] > median {
			hash |= 1 << uint(i)
		}
	}
	return hash
}

func medianOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// HammingDistance64 is the population count of XOR between two 64-bit
// hashes (spec.md §4.2).
func HammingDistance64(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
