package mining

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ComputeEmbedding produces a deterministic classical-MDS 2-D embedding of
// the selected record indices in the configured distance space, via power
// iteration with a Gershgorin shift for numerical stability
// (spec.md §4.11, original_source/src/isocity/MineEmbedding.hpp).
func ComputeEmbedding(records []MineRecord, indices []int, space DiversityMode, layoutWeight float64, robustScaling bool, metrics []Metric) MineEmbeddingResult {
	n := len(indices)
	if n < 2 {
		return MineEmbeddingResult{OK: false, Warning: "fewer than 2 records selected for embedding"}
	}

	if len(metrics) == 0 {
		metrics = DefaultOutlierMetrics()
	}
	ds := NewDistanceSpace(records, indices, metrics, robustScaling, space, layoutWeight)

	d2 := make([][]float64, n)
	for i := 0; i < n; i++ {
		d2[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i != j {
				d := ds.Distance(i, j)
				d2[i][j] = d * d
			}
		}
	}

	// Double-center: B = -1/2 * J * D2 * J, J = I - (1/n) * ones
	rowMean := make([]float64, n)
	var grandMean float64
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			s += d2[i][j]
		}
		rowMean[i] = s / float64(n)
		grandMean += s
	}
	grandMean /= float64(n * n)

	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			b.SetSym(i, j, -0.5*(d2[i][j]-rowMean[i]-rowMean[j]+grandMean))
		}
	}

	// Gershgorin shift: add shift*I so the dominant eigenvalue of the
	// shifted matrix is guaranteed positive and power iteration converges
	// to it (and to the runner-up after deflation) regardless of B's sign
	// spectrum.
	shift := gershgorinShift(b, n)
	shifted := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := b.At(i, j)
			if i == j {
				v += shift
			}
			shifted.SetSym(i, j, v)
		}
	}

	lambda1, v1 := powerIteration(shifted, n)
	deflated := deflate(shifted, lambda1, v1, n)
	lambda2, v2 := powerIteration(deflated, n)

	eig1 := lambda1 - shift
	eig2 := lambda2 - shift

	x := make([]float64, n)
	y := make([]float64, n)
	scale1 := math.Sqrt(math.Max(eig1, 0))
	scale2 := math.Sqrt(math.Max(eig2, 0))
	for i := 0; i < n; i++ {
		x[i] = v1.AtVec(i) * scale1
		y[i] = v2.AtVec(i) * scale2
	}

	return MineEmbeddingResult{X: x, Y: y, Lambda1: eig1, Lambda2: eig2, OK: true}
}

// gershgorinShift returns the max absolute row sum, an upper bound on the
// matrix's spectral radius, used to shift all eigenvalues non-negative.
func gershgorinShift(m *mat.SymDense, n int) float64 {
	var maxRadius float64
	for i := 0; i < n; i++ {
		var radius float64
		for j := 0; j < n; j++ {
			radius += math.Abs(m.At(i, j))
		}
		if radius > maxRadius {
			maxRadius = radius
		}
	}
	return maxRadius
}

// powerIteration finds the dominant eigenpair of a symmetric matrix via
// repeated matrix-vector multiplication and normalization from a fixed
// deterministic starting vector, over a fixed iteration count.
func powerIteration(m mat.Symmetric, n int) (float64, *mat.VecDense) {
	v := mat.NewVecDense(n, nil)
	init := 1.0 / math.Sqrt(float64(n))
	for i := 0; i < n; i++ {
		v.SetVec(i, init)
	}

	const iters = 200
	nv := mat.NewVecDense(n, nil)
	for iter := 0; iter < iters; iter++ {
		nv.MulVec(m, v)
		norm := mat.Norm(nv, 2)
		if norm < 1e-15 {
			break
		}
		nv.ScaleVec(1/norm, nv)
		v.CopyVec(nv)
	}
	// Rayleigh quotient for a sign-correct final eigenvalue estimate.
	mv := mat.NewVecDense(n, nil)
	mv.MulVec(m, v)
	lambda := mat.Dot(v, mv)
	return lambda, v
}

// deflate removes the found eigenvector's contribution: M' = M - lambda*v*v^T.
func deflate(m mat.Symmetric, lambda float64, v *mat.VecDense, n int) *mat.SymDense {
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, m.At(i, j)-lambda*v.AtVec(i)*v.AtVec(j))
		}
	}
	return out
}
