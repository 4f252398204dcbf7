package gonudg

import (
	"fmt"
	"math"
	"testing"

	"github.com/notargets/gocfd/DG1D"
	"github.com/notargets/gocfd/utils"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func monomial(r []float64, p int) []float64 {
	v := make([]float64, len(r))
	for i, x := range r {
		v[i] = math.Pow(x, float64(p))
	}
	return v
}

func TestJacobiPOrthonormal(t *testing.T) {
	for N := 1; N <= 8; N++ {
		t.Run(fmt.Sprintf("N=%d", N), func(t *testing.T) {
			x, w := JacobiGQ(0, 0, N)
			for i := 0; i <= N; i++ {
				Pi := JacobiP(x, 0, 0, i)
				for j := 0; j <= N; j++ {
					Pj := JacobiP(x, 0, 0, j)
					var sum float64
					for q := range x {
						sum += w[q] * Pi[q] * Pj[q]
					}
					want := 0.
					if i == j {
						want = 1.
					}
					if math.Abs(sum-want) > 1.e-12 {
						t.Errorf("<P%d,P%d> = %g, want %g", i, j, sum, want)
					}
				}
			}
		})
	}
}

func TestJacobiPMatchesGocfd(t *testing.T) {
	r := EquispacedNodes(7)
	for _, ab := range [][2]float64{{0, 0}, {1, 1}, {2, 0}} {
		for n := 0; n <= 6; n++ {
			got := JacobiP(r, ab[0], ab[1], n)
			want := DG1D.JacobiP(utils.NewVector(len(r), r), ab[0], ab[1], n)
			assert.InDeltaSlicef(t, want, got, 1.e-12, "alpha=%g beta=%g n=%d", ab[0], ab[1], n)

			gotD := GradJacobiP(r, ab[0], ab[1], n)
			wantD := DG1D.GradJacobiP(utils.NewVector(len(r), r), ab[0], ab[1], n)
			assert.InDeltaSlicef(t, wantD, gotD, 1.e-11, "grad alpha=%g beta=%g n=%d", ab[0], ab[1], n)
		}
	}
}

func TestJacobiGLMatchesGocfd(t *testing.T) {
	for N := 2; N <= 8; N++ {
		r := JacobiGL(0, 0, N)
		if r[0] != -1 || r[N] != 1 {
			t.Fatalf("N=%d: endpoints %g %g", N, r[0], r[N])
		}
		xint, _ := DG1D.JacobiGQ(1, 1, N-2)
		assert.InDeltaSlicef(t, xint.Data(), r[1:N], 1.e-12, "N=%d interior nodes", N)
		for i := 1; i <= N; i++ {
			if r[i] <= r[i-1] {
				t.Errorf("N=%d: nodes not increasing at %d", N, i)
			}
		}
	}
}

func TestLegendreGLWeights(t *testing.T) {
	_, w, err := LegendreGL(2)
	if err != nil {
		t.Fatal(err)
	}
	assert.InDeltaSlice(t, []float64{1. / 3, 4. / 3, 1. / 3}, w, 1.e-13)

	for N := 1; N <= 8; N++ {
		r, w, err := LegendreGL(N)
		if err != nil {
			t.Fatal(err)
		}
		// GL is exact through degree 2N-1
		for p := 0; p <= 2*N-1; p++ {
			f := monomial(r, p)
			var sum float64
			for i := range r {
				sum += w[i] * f[i]
			}
			want := 0.
			if p%2 == 0 {
				want = 2. / float64(p+1)
			}
			if math.Abs(sum-want) > 1.e-12 {
				t.Errorf("N=%d p=%d: integral %g, want %g", N, p, sum, want)
			}
		}
	}

	if _, _, err = LegendreGL(0); err == nil {
		t.Errorf("expected error for order 0")
	}
}

func TestDmatrix1DExact(t *testing.T) {
	for N := 1; N <= 8; N++ {
		r := JacobiGL(0, 0, N)
		Dr, err := Dmatrix1D(N, r, Vandermonde1D(N, r))
		if err != nil {
			t.Fatal(err)
		}
		for p := 0; p <= N; p++ {
			u := mat.NewVecDense(N+1, monomial(r, p))
			var du mat.VecDense
			du.MulVec(Dr, u)
			want := make([]float64, N+1)
			if p > 0 {
				for i, x := range monomial(r, p-1) {
					want[i] = float64(p) * x
				}
			}
			assert.InDeltaSlicef(t, want, du.RawVector().Data, 1.e-10, "N=%d p=%d", N, p)
		}
	}
}

func TestInterpolation1D(t *testing.T) {
	N := 4
	r := JacobiGL(0, 0, N)
	V := Vandermonde1D(N, r)

	t.Run("identity on own nodes", func(t *testing.T) {
		I, err := Interpolation1D(N, r, V)
		if err != nil {
			t.Fatal(err)
		}
		assert.True(t, mat.EqualApprox(I, eye(N+1), 1.e-12))
	})

	t.Run("exact for degree N", func(t *testing.T) {
		rOut := []float64{-0.9, -0.3, 0.1, 0.77}
		I, err := Interpolation1D(N, rOut, V)
		if err != nil {
			t.Fatal(err)
		}
		f := func(x float64) float64 { return 1 - 2*x + 3*x*x*x*x }
		u := make([]float64, N+1)
		for i, x := range r {
			u[i] = f(x)
		}
		var out mat.VecDense
		out.MulVec(I, mat.NewVecDense(N+1, u))
		for i, x := range rOut {
			assert.InDelta(t, f(x), out.AtVec(i), 1.e-12)
		}
	})

	t.Run("mass matrix integrates", func(t *testing.T) {
		M, err := MassMatrix1D(V)
		if err != nil {
			t.Fatal(err)
		}
		one := mat.NewVecDense(N+1, nil)
		for i := 0; i <= N; i++ {
			one.SetVec(i, 1)
		}
		assert.InDelta(t, 2., mat.Inner(one, M, one), 1.e-12)
	})
}

func eye(n int) *mat.Dense {
	I := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		I.Set(i, i, 1)
	}
	return I
}
