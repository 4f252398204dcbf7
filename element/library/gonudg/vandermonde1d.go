package gonudg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Vandermonde1D initializes the 1D Vandermonde matrix V_{ij} = phi_j(r_i)
// for the orthonormal Legendre basis of order N
func Vandermonde1D(N int, r []float64) *mat.Dense {
	V := mat.NewDense(len(r), N+1, nil)
	for j := 0; j <= N; j++ {
		V.SetCol(j, JacobiP(r, 0, 0, j))
	}
	return V
}

// GradVandermonde1D initializes the derivative of the modal basis (i) at (r)
// at order N
func GradVandermonde1D(N int, r []float64) *mat.Dense {
	Vr := mat.NewDense(len(r), N+1, nil)
	for j := 0; j <= N; j++ {
		Vr.SetCol(j, GradJacobiP(r, 0, 0, j))
	}
	return Vr
}

// Dmatrix1D computes the nodal differentiation matrix Dr = Vr V^-1, so that
// (Dr u)_i is du/dr at node i
func Dmatrix1D(N int, r []float64, V *mat.Dense) (*mat.Dense, error) {
	var Vinv mat.Dense
	if err := Vinv.Inverse(V); err != nil {
		return nil, fmt.Errorf("inverting order %d Vandermonde: %w", N, err)
	}
	Vr := GradVandermonde1D(N, r)
	Dr := mat.NewDense(len(r), len(r), nil)
	Dr.Mul(Vr, &Vinv)
	return Dr, nil
}

// MassMatrix1D computes the nodal mass matrix M = (V V^T)^-1
func MassMatrix1D(V *mat.Dense) (*mat.Dense, error) {
	n, _ := V.Dims()
	VVt := mat.NewDense(n, n, nil)
	VVt.Mul(V, V.T())
	M := mat.NewDense(n, n, nil)
	if err := M.Inverse(VVt); err != nil {
		return nil, fmt.Errorf("inverting V*V^T: %w", err)
	}
	return M, nil
}

// Interpolation1D builds the matrix that maps nodal values on the nodes
// defining V (order N) to values at rOut: I = V(rOut) V^-1.
// Row i of I corresponds to rOut[i].
func Interpolation1D(N int, rOut []float64, V *mat.Dense) (*mat.Dense, error) {
	var Vinv mat.Dense
	if err := Vinv.Inverse(V); err != nil {
		return nil, fmt.Errorf("inverting order %d Vandermonde: %w", N, err)
	}
	Vout := Vandermonde1D(N, rOut)
	I := mat.NewDense(len(rOut), N+1, nil)
	I.Mul(Vout, &Vinv)
	return I, nil
}

// LegendreGL returns the order N Gauss-Lobatto nodes with their quadrature
// weights. The weights are the row sums of the nodal mass matrix.
func LegendreGL(N int) (r, w []float64, err error) {
	if N < 1 {
		return nil, nil, fmt.Errorf("Gauss-Lobatto order must be at least 1, have %d", N)
	}
	r = JacobiGL(0, 0, N)
	M, err := MassMatrix1D(Vandermonde1D(N, r))
	if err != nil {
		return nil, nil, err
	}
	w = make([]float64, N+1)
	for i := range w {
		for j := 0; j <= N; j++ {
			w[i] += M.At(i, j)
		}
	}
	return r, w, nil
}

// EquispacedNodes returns N+1 equally spaced points on [-1,1]
func EquispacedNodes(N int) []float64 {
	if N == 0 {
		return []float64{0}
	}
	r := make([]float64, N+1)
	for i := range r {
		r[i] = -1 + 2*float64(i)/float64(N)
	}
	return r
}
