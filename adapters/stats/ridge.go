// Package stats provides the dense linear algebra behind the diffusion
// models: closed-form ridge regression, error metrics and grid helpers.
package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// pivotEps is the singularity floor for Gauss-Jordan elimination: a pivot
// smaller than this in absolute value aborts the fit.
const pivotEps = 1e-12

// FitRidge solves w = (XᵗX + alpha*I)⁻¹ Xᵗy. The normal-equations
// products run on gonum dense matrices; the resulting (k+1)x(k+1) system
// is solved by Gauss-Jordan elimination with partial pivoting so results
// are bit-for-bit reproducible across platforms. Returns nil when the
// system is near-singular - callers treat that as "configuration
// unusable", never as a crash. alpha = 0 degenerates to ordinary least
// squares and is allowed to fail more readily.
func FitRidge(x [][]float64, y []float64, alpha float64) []float64 {
	n := len(x)
	if n == 0 || len(x[0]) == 0 || n != len(y) {
		return nil
	}
	d := len(x[0])

	flat := make([]float64, 0, n*d)
	for _, row := range x {
		flat = append(flat, row...)
	}
	xm := mat.NewDense(n, d, flat)
	yv := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(xm.T(), xm)
	for i := 0; i < d; i++ {
		xtx.Set(i, i, xtx.At(i, i)+alpha)
	}

	var xty mat.VecDense
	xty.MulVec(xm.T(), yv)

	return solveGaussJordan(&xtx, &xty, d)
}

// solveGaussJordan reduces the augmented system [A | b] to the identity,
// swapping in the largest-magnitude pivot at each column.
func solveGaussJordan(a *mat.Dense, b *mat.VecDense, d int) []float64 {
	aug := make([][]float64, d)
	for i := 0; i < d; i++ {
		aug[i] = make([]float64, d+1)
		for j := 0; j < d; j++ {
			aug[i][j] = a.At(i, j)
		}
		aug[i][d] = b.AtVec(i)
	}

	for col := 0; col < d; col++ {
		pivot := col
		for r := col + 1; r < d; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < pivotEps {
			return nil
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		scale := aug[col][col]
		for j := col; j <= d; j++ {
			aug[col][j] /= scale
		}
		for r := 0; r < d; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			if factor == 0 {
				continue
			}
			for j := col; j <= d; j++ {
				aug[r][j] -= factor * aug[col][j]
			}
		}
	}

	w := make([]float64, d)
	for i := 0; i < d; i++ {
		w[i] = aug[i][d]
	}
	return w
}

// Predict computes the plain dot product of a weight vector against one
// feature row.
func Predict(weights, row []float64) float64 {
	sum := 0.0
	for i := range weights {
		sum += weights[i] * row[i]
	}
	return sum
}

// RMSE is the root-mean-squared error over paired slices. The divisor is
// max(1, n) so empty input yields 0 rather than NaN.
func RMSE(yTrue, yPred []float64) float64 {
	sumSq := 0.0
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		sumSq += diff * diff
	}
	n := len(yTrue)
	if n < 1 {
		n = 1
	}
	return math.Sqrt(sumSq / float64(n))
}

// LogSpace returns steps values geometrically spaced between min and max
// inclusive (linear interpolation in log space). steps = 1 returns just
// min.
func LogSpace(min, max float64, steps int) []float64 {
	if steps <= 1 {
		return []float64{min}
	}
	logMin, logMax := math.Log(min), math.Log(max)
	out := make([]float64, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		out[i] = math.Exp(logMin + t*(logMax-logMin))
	}
	return out
}

// NonzeroRate is the fraction of entries that are non-zero, a proxy for
// how sparse the prediction signal is. Empty input yields 0.
func NonzeroRate(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	nonzero := 0
	for _, v := range values {
		if v != 0 {
			nonzero++
		}
	}
	return float64(nonzero) / float64(len(values))
}
