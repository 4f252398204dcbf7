package quad

import (
	"math"

	"github.com/notargets/DGGlue/element"
	"gonum.org/v1/gonum/mat"
)

// kronIXA applies the 1D operator A along the fastest (r) index of an
// Nrp×Nrp nodal block: y[n*Nrp+i] = sum_j A[i][j] x[n*Nrp+j]
func kronIXA(Nrp int, A mat.Matrix, x, y []float64) {
	for n := 0; n < Nrp; n++ {
		for i := 0; i < Nrp; i++ {
			var sum float64
			for j := 0; j < Nrp; j++ {
				sum += A.At(i, j) * x[n*Nrp+j]
			}
			y[n*Nrp+i] = sum
		}
	}
}

// kronAXI applies A along the slow (s) index:
// y[i*Nrp+m] = sum_j A[i][j] x[j*Nrp+m]
func kronAXI(Nrp int, A mat.Matrix, x, y []float64) {
	for i := 0; i < Nrp; i++ {
		for m := 0; m < Nrp; m++ {
			var sum float64
			for j := 0; j < Nrp; j++ {
				sum += A.At(i, j) * x[j*Nrp+m]
			}
			y[i*Nrp+m] = sum
		}
	}
}

// blendGrid places the nodes of every element by bilinear blending of its
// four corners
func blendGrid(ref *element.QuadReference, VX, VY, VZ []float64, EToV [][4]int,
	x, y, z []float64) {
	Nrp, Np := ref.Nrp, ref.Np
	r := ref.R
	for k, v := range EToV {
		va, vb, vc, vd := v[0], v[1], v[2], v[3]
		for n := 0; n < Nrp; n++ {
			for m := 0; m < Nrp; m++ {
				wa := (1 - r[m]) * (1 - r[n])
				wb := (1 + r[m]) * (1 - r[n])
				wc := (1 - r[m]) * (1 + r[n])
				wd := (1 + r[m]) * (1 + r[n])
				idx := Np*k + Nrp*n + m
				x[idx] = (wa*VX[va] + wb*VX[vb] + wc*VX[vc] + wd*VX[vd]) / 4
				y[idx] = (wa*VY[va] + wb*VY[vb] + wc*VY[vc] + wd*VY[vd]) / 4
				if VZ != nil {
					z[idx] = (wa*VZ[va] + wb*VZ[vb] + wc*VZ[vc] + wd*VZ[vd]) / 4
				}
			}
		}
	}
}

// metrics holds the output of geo2D; volume arrays are K*Np, face arrays
// K*Nfaces*Nfp
type metrics struct {
	Jrx, Jry, Jsx, Jsy, J []float64
	Nx, Ny, SJ            []float64
}

// geo2D computes the scaled inverse metric, Jacobian determinant and the
// outward unit face normals of every element
func geo2D(ref *element.QuadReference, K int, x, y []float64) *metrics {
	Nrp, Np, Nfp := ref.Nrp, ref.Np, ref.Nfp
	Nfaces := element.QuadNfaces
	g := &metrics{
		Jrx: make([]float64, K*Np),
		Jry: make([]float64, K*Np),
		Jsx: make([]float64, K*Np),
		Jsy: make([]float64, K*Np),
		J:   make([]float64, K*Np),
		Nx:  make([]float64, K*Nfaces*Nfp),
		Ny:  make([]float64, K*Nfaces*Nfp),
		SJ:  make([]float64, K*Nfaces*Nfp),
	}

	xr := make([]float64, Np)
	yr := make([]float64, Np)
	xs := make([]float64, Np)
	ys := make([]float64, Np)
	for k := 0; k < K; k++ {
		vsk := k * Np
		fsk := k * Nfaces * Nfp
		kronIXA(Nrp, ref.Dr, x[vsk:vsk+Np], xr)
		kronIXA(Nrp, ref.Dr, y[vsk:vsk+Np], yr)
		kronAXI(Nrp, ref.Dr, x[vsk:vsk+Np], xs)
		kronAXI(Nrp, ref.Dr, y[vsk:vsk+Np], ys)

		for n := 0; n < Np; n++ {
			idx := vsk + n
			g.J[idx] = xr[n]*ys[n] - xs[n]*yr[n]
			g.Jrx[idx] = ys[n]
			g.Jry[idx] = -xs[n]
			g.Jsx[idx] = -yr[n]
			g.Jsy[idx] = xr[n]
		}

		for n := 0; n < Nfp; n++ {
			for f := 0; f < Nfaces; f++ {
				fidx := fsk + f*Nfp + n
				vidx := vsk + ref.Fmask[f][n]
				var nx, ny float64
				switch f {
				case 0:
					nx, ny = -g.Jrx[vidx], -g.Jry[vidx]
				case 1:
					nx, ny = g.Jrx[vidx], g.Jry[vidx]
				case 2:
					nx, ny = -g.Jsx[vidx], -g.Jsy[vidx]
				case 3:
					nx, ny = g.Jsx[vidx], g.Jsy[vidx]
				}
				sJ := math.Hypot(nx, ny)
				g.SJ[fidx] = sJ
				g.Nx[fidx] = nx / sJ
				g.Ny[fidx] = ny / sJ
			}
		}
	}
	return g
}
