// Package kernel provides the out-of-the-box entry-generating
// callables spec §6 lists (zeros, identity, arange, random_normal,
// random_uniform, laplace1d, cauchy2d, laplacend, helmholtznd), each
// conforming to dense.Kernel's fill signature. These are conveniences
// for building test matrices and example point-cloud problems; the
// engine itself treats any dense.Kernel as an opaque collaborator
// (spec's "geometry/kernel functions producing scalar entries" are
// out of scope for the core — this package just ships a few of them).
package kernel

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hmatrix-go/hmatrix/cluster"
	"github.com/hmatrix-go/hmatrix/dense"
)

// Zeros fills every entry with 0.
func Zeros() dense.Kernel {
	return func(rows, cols, stride int, data []float64, rowStart, colStart int) {
		for i := 0; i < rows; i++ {
			row := data[i*stride : i*stride+cols]
			for j := range row {
				row[j] = 0
			}
		}
	}
}

// Identity fills the global identity matrix's values into the block.
func Identity() dense.Kernel {
	return func(rows, cols, stride int, data []float64, rowStart, colStart int) {
		for i := 0; i < rows; i++ {
			row := data[i*stride : i*stride+cols]
			for j := range row {
				if rowStart+i == colStart+j {
					row[j] = 1
				} else {
					row[j] = 0
				}
			}
		}
	}
}

// Arange fills entry (i,j) with its row-major linear index into a
// matrix of totalCols columns: (rowStart+i)*totalCols + (colStart+j).
func Arange(totalCols int) dense.Kernel {
	return func(rows, cols, stride int, data []float64, rowStart, colStart int) {
		for i := 0; i < rows; i++ {
			row := data[i*stride : i*stride+cols]
			for j := range row {
				row[j] = float64((rowStart+i)*totalCols + colStart + j)
			}
		}
	}
}

// RandomNormal fills every entry independently from Normal(mean, std).
func RandomNormal(mean, std float64) dense.Kernel {
	dist := distuv.Normal{Mu: mean, Sigma: std}
	return func(rows, cols, stride int, data []float64, rowStart, colStart int) {
		for i := 0; i < rows; i++ {
			row := data[i*stride : i*stride+cols]
			for j := range row {
				row[j] = dist.Rand()
			}
		}
	}
}

// RandomUniform fills every entry independently from Uniform(lo, hi).
func RandomUniform(lo, hi float64) dense.Kernel {
	dist := distuv.Uniform{Min: lo, Max: hi}
	return func(rows, cols, stride int, data []float64, rowStart, colStart int) {
		for i := 0; i < rows; i++ {
			row := data[i*stride : i*stride+cols]
			for j := range row {
				row[j] = dist.Rand()
			}
		}
	}
}

// Laplace1D returns the free-space 1-D Laplace kernel 1/|x_i-x_j| over
// a plain coordinate vector (spec §6's "arbitrary k falls back to a
// plain []float64 coordinate vector" generic path's 1-D instance). The
// diagonal (self-interaction) is regularized to 0.
func Laplace1D(x []float64) dense.Kernel {
	return func(rows, cols, stride int, data []float64, rowStart, colStart int) {
		for i := 0; i < rows; i++ {
			row := data[i*stride : i*stride+cols]
			xi := x[rowStart+i]
			for j := range row {
				gj := colStart + j
				if rowStart+i == gj {
					row[j] = 0
					continue
				}
				row[j] = 1 / math.Abs(xi-x[gj])
			}
		}
	}
}

// Cauchy2D returns the 2-D Cauchy kernel 1/(1+‖p_i-p_j‖²) over points.
// points.Dim() must be 2.
func Cauchy2D(points cluster.PointSet) dense.Kernel {
	return func(rows, cols, stride int, data []float64, rowStart, colStart int) {
		for i := 0; i < rows; i++ {
			row := data[i*stride : i*stride+cols]
			pi := points.Coords[rowStart+i]
			for j := range row {
				pj := points.Coords[colStart+j]
				d := cluster.Dist(pi, pj)
				row[j] = 1 / (1 + d*d)
			}
		}
	}
}

// LaplaceND returns the free-space Laplace kernel 1/‖p_i-p_j‖ over a
// point set of arbitrary ambient dimension. The diagonal is
// regularized to 0.
func LaplaceND(points cluster.PointSet) dense.Kernel {
	return func(rows, cols, stride int, data []float64, rowStart, colStart int) {
		for i := 0; i < rows; i++ {
			row := data[i*stride : i*stride+cols]
			gi := rowStart + i
			pi := points.Coords[gi]
			for j := range row {
				gj := colStart + j
				if gi == gj {
					row[j] = 0
					continue
				}
				row[j] = 1 / cluster.Dist(pi, points.Coords[gj])
			}
		}
	}
}

// HelmholtzND returns the free-space Helmholtz kernel's real part,
// cos(wavenumber·r)/(1+r), over a point set of arbitrary ambient
// dimension; the 1+r denominator avoids the r=0 singularity instead of
// special-casing the diagonal.
func HelmholtzND(points cluster.PointSet, wavenumber float64) dense.Kernel {
	return func(rows, cols, stride int, data []float64, rowStart, colStart int) {
		for i := 0; i < rows; i++ {
			row := data[i*stride : i*stride+cols]
			pi := points.Coords[rowStart+i]
			for j := range row {
				pj := points.Coords[colStart+j]
				r := cluster.Dist(pi, pj)
				row[j] = math.Cos(wavenumber*r) / (1 + r)
			}
		}
	}
}
